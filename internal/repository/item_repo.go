package repository

import (
	"context"
	"errors"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByDescription(ctx context.Context, description string) (*model.Item, error)
	FindByID(ctx context.Context, id uint) (*model.Item, error)
	FindAll(ctx context.Context) ([]model.Item, error)
	Count(ctx context.Context) (int64, error)
	// WithTx binds the repository to an open transaction.
	WithTx(tx *gorm.DB) ItemRepository
}

type itemRepo struct {
	base
}

func NewItemRepo(db *gorm.DB, timeout time.Duration) ItemRepository {
	return &itemRepo{base{db: db, timeout: timeout}}
}

func (r *itemRepo) WithTx(tx *gorm.DB) ItemRepository {
	return &itemRepo{txBase(tx)}
}

// Create stores item with its description normalized. A unique-index hit
// comes back as ErrDuplicateItem.
func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	item.Description = model.NormalizeDescription(item.Description)
	if err := db.Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Wrap(apperror.ErrDuplicateItem, err, "Item already exists")
		}
		return translateError(err)
	}
	return nil
}

func (r *itemRepo) FindByDescription(ctx context.Context, description string) (*model.Item, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var item model.Item
	err := db.Where("description = ?", model.NormalizeDescription(description)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.ErrItemNotFound, "Item not found")
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *itemRepo) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var item model.Item
	err := db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Newf(apperror.ErrUnknownItem, "item %d does not exist", id)
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *itemRepo) FindAll(ctx context.Context) ([]model.Item, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var items []model.Item
	if err := db.Order("id ASC").Find(&items).Error; err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

func (r *itemRepo) Count(ctx context.Context) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&model.Item{}).Count(&n).Error; err != nil {
		return 0, translateError(err)
	}
	return n, nil
}
