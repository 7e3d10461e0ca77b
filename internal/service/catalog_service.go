package service

import (
	"context"
	"errors"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CatalogService interface {
	// CreateItem registers a new item. A positive initialStock is recorded as
	// a purchase by actorID in the same database transaction.
	CreateItem(ctx context.Context, actorID uuid.UUID, description string, initialStock int) (*model.Item, error)
	FindByDescription(ctx context.Context, description string) (*model.Item, error)
	ListAll(ctx context.Context) ([]model.Item, error)
}

type catalogService struct {
	store     *repository.Store
	itemRepo  repository.ItemRepository
	txRepo    repository.TransactionRepository
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewCatalogService(store *repository.Store, iRepo repository.ItemRepository, tRepo repository.TransactionRepository,
	publisher EventPublisher, m *metrics.Metrics, log *zap.Logger) CatalogService {
	return &catalogService{
		store:     store,
		itemRepo:  iRepo,
		txRepo:    tRepo,
		publisher: publisherOrNop(publisher),
		metrics:   m,
		log:       log.Named("catalog"),
	}
}

func (s *catalogService) CreateItem(ctx context.Context, actorID uuid.UUID, description string, initialStock int) (*model.Item, error) {
	description = model.NormalizeDescription(description)
	if description == "" {
		return nil, apperror.New(apperror.ErrInvalidInput, "Description is required")
	}
	if initialStock < 0 {
		return nil, apperror.New(apperror.ErrInvalidInput, "Quantity must not be negative")
	}
	if initialStock > model.MaxQuantity {
		return nil, apperror.Newf(apperror.ErrInvalidInput, "Quantity must be at most %d", model.MaxQuantity)
	}

	// fast path; the unique index still decides under a race
	if _, err := s.itemRepo.FindByDescription(ctx, description); err == nil {
		return nil, apperror.New(apperror.ErrDuplicateItem, "Item already exists")
	} else if !errors.Is(err, apperror.ErrItemNotFound) {
		return nil, err
	}

	item := &model.Item{Description: description, CreatedBy: actorID}
	var opening *model.Transaction
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.itemRepo.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		if initialStock == 0 {
			return nil
		}
		rec, err := s.txRepo.WithTx(tx).Append(ctx, item.ID, actorID, model.TxPurchase, initialStock)
		if err != nil {
			return err
		}
		opening = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("item created",
		zap.Uint("item_id", item.ID),
		zap.String("description", item.Description),
		zap.Int("initial_stock", initialStock),
		zap.Stringer("actor_id", actorID),
	)
	if s.metrics != nil {
		s.metrics.ItemsCreated.Inc()
		if opening != nil {
			s.metrics.TransactionsRecorded.WithLabelValues(string(opening.Kind)).Inc()
		}
	}
	s.publisher.Publish(ws.EventItemCreated, item)
	if opening != nil {
		s.publisher.Publish(ws.EventTransactionRecorded, opening)
	}
	return item, nil
}

func (s *catalogService) FindByDescription(ctx context.Context, description string) (*model.Item, error) {
	return s.itemRepo.FindByDescription(ctx, description)
}

func (s *catalogService) ListAll(ctx context.Context) ([]model.Item, error) {
	return s.itemRepo.FindAll(ctx)
}
