package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"
	"go-inventory-ledger/pkg/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	username := pflag.StringP("username", "u", "", "account to reset")
	password := pflag.StringP("password", "p", "", "new password (at least 6 characters)")
	pflag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: reset-password --username NAME --password NEW_PASSWORD")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Connect(cfg.Database(), zl)
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}

	users := repository.NewUserRepo(db, cfg.DB.StoreTimeout)
	auth := service.NewAuthService(users, jwt.NewManager(cfg.Session.Secret, cfg.Session.TTL), zl)

	// existing sessions are ended along with the password change
	if err := auth.ResetPassword(context.Background(), *username, *password); err != nil {
		zl.Fatal("reset password", zap.String("username", *username), zap.Error(err))
	}
	zl.Info("password reset", zap.String("username", *username))
}
