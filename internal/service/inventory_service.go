package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"go.uber.org/zap"
)

// Page selects a window of the inventory. A zero Limit returns every row.
type Page struct {
	Page  int
	Limit int
}

type InventoryService interface {
	// GetInventory returns the derived quantities of every item sorted by
	// description, plus the total number of items.
	GetInventory(ctx context.Context, page Page) ([]model.InventoryEntry, int, error)
	// GetItemHistory returns an item's transactions oldest first.
	GetItemHistory(ctx context.Context, description string) ([]model.Transaction, error)
	ListLedger(ctx context.Context) ([]model.Transaction, error)
}

type inventoryService struct {
	itemRepo repository.ItemRepository
	txRepo   repository.TransactionRepository
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewInventoryService(iRepo repository.ItemRepository, tRepo repository.TransactionRepository, m *metrics.Metrics, log *zap.Logger) InventoryService {
	return &inventoryService{
		itemRepo: iRepo,
		txRepo:   tRepo,
		metrics:  m,
		log:      log.Named("inventory"),
	}
}

func (s *inventoryService) GetInventory(ctx context.Context, page Page) ([]model.InventoryEntry, int, error) {
	if page.Page < 0 || page.Limit < 0 {
		return nil, 0, apperror.New(apperror.ErrInvalidInput, "page and limit must not be negative")
	}

	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	txs, err := s.txRepo.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	byItem := ledger.GroupByItem(txs)

	entries := make([]model.InventoryEntry, 0, len(items))
	for _, item := range items {
		totals, err := ledger.Aggregate(item.ID, byItem[item.ID])
		if err != nil {
			s.reportIntegrity(item, totals, err)
			return nil, 0, err
		}
		entries = append(entries, model.InventoryEntry{
			ItemID:      item.ID,
			Description: item.Description,
			Quantity:    totals.OnHand,
			Loaned:      totals.OnLoan,
		})
	}

	sortEntries(entries)
	return paginate(entries, page), len(entries), nil
}

func (s *inventoryService) reportIntegrity(item model.Item, totals ledger.Totals, err error) {
	msg := "ledger integrity violation"
	switch {
	case errors.Is(err, apperror.ErrIntegrityViolation):
	case errors.Is(err, apperror.ErrQuantityOverflow):
		msg = "ledger quantity overflow"
	default:
		return
	}
	s.log.Error(msg,
		zap.Uint("item_id", item.ID),
		zap.String("description", item.Description),
		zap.Int("quantity_on_hand", totals.OnHand),
		zap.Int("quantity_on_loan", totals.OnLoan),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.IntegrityViolations.Inc()
	}
}

// sortEntries orders by description case-insensitively, then by item id.
func sortEntries(entries []model.InventoryEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Description), strings.ToLower(entries[j].Description)
		if a != b {
			return a < b
		}
		return entries[i].ItemID < entries[j].ItemID
	})
}

func paginate(entries []model.InventoryEntry, page Page) []model.InventoryEntry {
	if page.Limit == 0 {
		return entries
	}
	p := page.Page
	if p < 1 {
		p = 1
	}
	// compare before multiplying so huge page numbers cannot overflow
	if len(entries) == 0 || p-1 > (len(entries)-1)/page.Limit {
		return []model.InventoryEntry{}
	}
	start := (p - 1) * page.Limit
	end := len(entries)
	if page.Limit < end-start {
		end = start + page.Limit
	}
	return entries[start:end]
}

func (s *inventoryService) GetItemHistory(ctx context.Context, description string) ([]model.Transaction, error) {
	item, err := s.itemRepo.FindByDescription(ctx, description)
	if err != nil {
		return nil, err
	}
	txs, err := s.txRepo.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}

func (s *inventoryService) ListLedger(ctx context.Context) ([]model.Transaction, error) {
	txs, err := s.txRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}
