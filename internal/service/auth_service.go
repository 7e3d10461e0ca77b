package service

import (
	"context"
	"errors"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 6

var ErrInvalidCredentials = apperror.New(apperror.ErrUnauthorized, "Invalid username or password")

type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	// Logout rotates the user's token version, ending every session.
	Logout(ctx context.Context, userID uuid.UUID) error
	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
}

type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log.Named("auth"),
	}
}

func validateCredentials(username, password string) error {
	if model.NormalizeUsername(username) == "" || password == "" {
		return apperror.New(apperror.ErrInvalidInput, "Username and password are required")
	}
	if len(password) < minPasswordLength {
		return apperror.Newf(apperror.ErrInvalidInput, "Password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func (s *authService) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, apperror.New(apperror.ErrInvalidInput, "Username already exists")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	user := &model.User{Username: username, Email: email, TokenVersion: uuid.NewString()}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	user.CreatedBy = "signup"
	user.UpdatedBy = "signup"
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user signed up", zap.Stringer("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// single session: a fresh version invalidates older tokens
	version := uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.TokenVersion = version
	user.LastLoginAt = &now

	token, err := s.tokens.Generate(user.ID, user.Username, version)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(s.tokens.TTL()),
		User:      user.ToResponse(),
	}, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.userRepo.UpdateTokenVersion(ctx, userID, uuid.NewString())
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	return err
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, err, "Authentication required")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.New(apperror.ErrUnauthorized, "Authentication required")
	}
	if err != nil {
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, apperror.New(apperror.ErrUnauthorized, "Authentication required")
	}
	return user, nil
}

func (s *authService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if err := validateCredentials(username, newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	return s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.NewString())
}
