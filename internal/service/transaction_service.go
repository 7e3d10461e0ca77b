package service

import (
	"context"
	"fmt"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/idempotency"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RecordTransactionInput struct {
	ActorID     uuid.UUID
	Description string
	Kind        string
	Quantity    int
	// IdempotencyKey is optional. A repeated key is rejected with
	// ErrDuplicateRequest and nothing is appended.
	IdempotencyKey string
}

type TransactionService interface {
	RecordTransaction(ctx context.Context, in RecordTransactionInput) (*model.Transaction, error)
}

type transactionService struct {
	itemRepo  repository.ItemRepository
	txRepo    repository.TransactionRepository
	idem      idempotency.Store
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewTransactionService(iRepo repository.ItemRepository, tRepo repository.TransactionRepository, idem idempotency.Store,
	publisher EventPublisher, m *metrics.Metrics, log *zap.Logger) TransactionService {
	return &transactionService{
		itemRepo:  iRepo,
		txRepo:    tRepo,
		idem:      idem,
		publisher: publisherOrNop(publisher),
		metrics:   m,
		log:       log.Named("transactions"),
	}
}

// RecordTransaction appends one event against the item named by
// description. It does not check the result against current stock; a
// ledger that goes negative is reported when inventory is next read.
func (s *transactionService) RecordTransaction(ctx context.Context, in RecordTransactionInput) (rec *model.Transaction, err error) {
	item, err := s.itemRepo.FindByDescription(ctx, in.Description)
	if err != nil {
		return nil, err
	}

	kind, ok := model.ParseTransactionKind(in.Kind)
	if !ok {
		return nil, apperror.Newf(apperror.ErrInvalidTransactionType,
			"Invalid transaction type %q: must be one of borrow, return, purchase, dispose", in.Kind)
	}
	if in.Quantity <= 0 {
		return nil, apperror.New(apperror.ErrInvalidInput, "Quantity must be a positive integer")
	}
	if in.Quantity > model.MaxQuantity {
		return nil, apperror.Newf(apperror.ErrInvalidInput, "Quantity must be at most %d", model.MaxQuantity)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		key := fmt.Sprintf("%s:%s", in.ActorID, in.IdempotencyKey)
		claimed, claimErr := s.idem.Claim(ctx, key)
		if claimErr != nil {
			return nil, apperror.Wrap(apperror.ErrStorageUnavailable, claimErr, "idempotency store is unavailable")
		}
		if !claimed {
			if s.metrics != nil {
				s.metrics.DuplicateRequests.Inc()
			}
			return nil, apperror.New(apperror.ErrDuplicateRequest, "Duplicate request")
		}
		defer func() {
			if err == nil {
				return
			}
			// the caller may already have gone away
			if rerr := s.idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
				s.log.Warn("release idempotency key", zap.String("key", key), zap.Error(rerr))
			}
		}()
	}

	rec, err = s.txRepo.Append(ctx, item.ID, in.ActorID, kind, in.Quantity)
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction recorded",
		zap.Uint("transaction_id", rec.ID),
		zap.Uint("item_id", item.ID),
		zap.String("kind", string(kind)),
		zap.Int("quantity", rec.Quantity),
		zap.Stringer("actor_id", in.ActorID),
	)
	if s.metrics != nil {
		s.metrics.TransactionsRecorded.WithLabelValues(string(kind)).Inc()
	}
	s.publisher.Publish(ws.EventTransactionRecorded, rec)
	return rec, nil
}
