package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
)

const maxMovementDays = 366

// DailyMovement sums each transaction kind over one UTC day.
type DailyMovement struct {
	Date      string `json:"date"`
	Purchased int    `json:"purchased"`
	Disposed  int    `json:"disposed"`
	Borrowed  int    `json:"borrowed"`
	Returned  int    `json:"returned"`
}

type MovementService interface {
	// GetStockMovement covers the last days UTC days including today. Days
	// without transactions are present with zero sums.
	GetStockMovement(ctx context.Context, days int) ([]DailyMovement, error)
}

type movementService struct {
	txRepo repository.TransactionRepository
	now    func() time.Time
}

func NewMovementService(txRepo repository.TransactionRepository) MovementService {
	return &movementService{txRepo: txRepo, now: time.Now}
}

func (s *movementService) GetStockMovement(ctx context.Context, days int) ([]DailyMovement, error) {
	if days < 1 || days > maxMovementDays {
		return nil, apperror.Newf(apperror.ErrInvalidInput, "days must be between 1 and %d", maxMovementDays)
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	txs, err := s.txRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]DailyMovement, days)
	index := make(map[string]int, days)
	for i := range out {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		out[i].Date = date
		index[date] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Timestamp.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		switch tx.Kind {
		case model.TxPurchase:
			out[i].Purchased += tx.Quantity
		case model.TxDispose:
			out[i].Disposed += tx.Quantity
		case model.TxBorrow:
			out[i].Borrowed += tx.Quantity
		case model.TxReturn:
			out[i].Returned += tx.Quantity
		}
	}
	return out, nil
}
