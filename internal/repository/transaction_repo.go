package repository

import (
	"context"
	"errors"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository is the append-only ledger store. There is no update
// or delete.
type TransactionRepository interface {
	Append(ctx context.Context, itemID uint, actorID uuid.UUID, kind model.TransactionKind, quantity int) (*model.Transaction, error)
	ListByItem(ctx context.Context, itemID uint) ([]model.Transaction, error)
	ListAll(ctx context.Context) ([]model.Transaction, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error)
	WithTx(tx *gorm.DB) TransactionRepository
}

type transactionRepo struct {
	base
	clock ledger.Clock
}

func NewTransactionRepo(db *gorm.DB, clock ledger.Clock, timeout time.Duration) TransactionRepository {
	return &transactionRepo{base: base{db: db, timeout: timeout}, clock: clock}
}

func (r *transactionRepo) WithTx(tx *gorm.DB) TransactionRepository {
	return &transactionRepo{base: txBase(tx), clock: r.clock}
}

// Append validates and inserts one event. The item row is locked for the
// duration so appends to the same item are serialized, and the timestamp is
// never earlier than the item's previous event.
func (r *transactionRepo) Append(ctx context.Context, itemID uint, actorID uuid.UUID, kind model.TransactionKind, quantity int) (*model.Transaction, error) {
	if !kind.Valid() {
		return nil, apperror.Newf(apperror.ErrInvalidInput, "transaction type %q is not one of borrow, return, purchase, dispose", kind)
	}
	if quantity <= 0 {
		return nil, apperror.New(apperror.ErrInvalidInput, "Quantity must be a positive integer")
	}
	if quantity > model.MaxQuantity {
		return nil, apperror.Newf(apperror.ErrInvalidInput, "Quantity must be at most %d", model.MaxQuantity)
	}
	if actorID == uuid.Nil {
		return nil, apperror.New(apperror.ErrInvalidInput, "actor is required")
	}

	db, cancel := r.conn(ctx)
	defer cancel()

	var record model.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := setLockTimeout(tx, r.timeout); err != nil {
			return err
		}

		var item model.Item
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, itemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Newf(apperror.ErrUnknownItem, "item %d does not exist", itemID)
		}
		if err != nil {
			return err
		}

		var last model.Transaction
		res := tx.Where("item_id = ?", itemID).
			Order("occurred_at DESC").
			Order("id DESC").
			Limit(1).
			Find(&last)
		if res.Error != nil {
			return res.Error
		}

		ts := r.clock.Now()
		if res.RowsAffected > 0 && last.Timestamp.After(ts) {
			ts = last.Timestamp
		}

		record = model.Transaction{
			ItemID:    itemID,
			ActorID:   actorID,
			Kind:      kind,
			Quantity:  quantity,
			Timestamp: ts,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// ListByItem returns the item's events oldest first.
func (r *transactionRepo) ListByItem(ctx context.Context, itemID uint) ([]model.Transaction, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var txs []model.Transaction
	err := db.Where("item_id = ?", itemID).
		Order("occurred_at ASC").
		Order("id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return txs, nil
}

// ListAll returns the whole ledger oldest first.
func (r *transactionRepo) ListAll(ctx context.Context) ([]model.Transaction, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var txs []model.Transaction
	if err := db.Order("occurred_at ASC").Order("id ASC").Find(&txs).Error; err != nil {
		return nil, translateError(err)
	}
	return txs, nil
}

// ListBetween returns events with from <= timestamp < to, oldest first.
func (r *transactionRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var txs []model.Transaction
	err := db.Where("occurred_at >= ? AND occurred_at < ?", from.UTC(), to.UTC()).
		Order("occurred_at ASC").
		Order("id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return txs, nil
}
