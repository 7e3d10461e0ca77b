package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Transaction{},
	)
}

// base carries the handle and the per-operation deadline shared by all
// repositories. A zero timeout leaves the caller's context untouched.
type base struct {
	db      *gorm.DB
	timeout time.Duration
	// inTx marks a handle bound with WithTx. Its statements run under the
	// context the transaction was opened with, which carries the store deadline.
	inTx bool
}

func txBase(tx *gorm.DB) base {
	return base{db: tx, inTx: true}
}

func (b base) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if b.inTx {
		return b.db.WithContext(b.db.Statement.Context), func() {}
	}
	if b.timeout <= 0 {
		return b.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}

// Store scopes multi-repository work to one database transaction.
type Store struct {
	base
}

func NewStore(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{base{db: db, timeout: timeout}}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a single database transaction bounded by the
// store timeout. Repositories bound to tx with WithTx join it.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := setLockTimeout(tx, s.timeout); err != nil {
			return err
		}
		return fn(tx)
	})
	return translateError(err)
}

// Ping checks that the database answers within the store timeout.
func (s *Store) Ping(ctx context.Context) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return translateError(err)
	}
	return translateError(sqlDB.PingContext(db.Statement.Context))
}

// setLockTimeout bounds row-lock waits on postgres so a stuck writer fails
// the append instead of blocking it. MySQL and SQLite rely on the context
// deadline and busy_timeout respectively.
func setLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if timeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())).Error
}

// translateError maps driver failures onto the application taxonomy.
// Errors already classified pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Wrap(apperror.ErrDuplicateItem, err, "record already exists")
	}

	if isContention(err) {
		return apperror.Wrap(apperror.ErrStorageUnavailable, err, "storage is busy, retry the request")
	}
	return apperror.Wrap(apperror.ErrStorageUnavailable, err, "storage is unavailable")
}

// isContention reports lock waits, deadlocks, serialization failures and
// expired deadlines across the supported drivers.
func isContention(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", // lock_not_available
			"40001", // serialization_failure
			"40P01", // deadlock_detected
			"57014": // query_canceled
			return true
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, 1213: // lock wait timeout, deadlock
			return true
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}
