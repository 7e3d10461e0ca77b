package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-inventory-ledger/internal/idempotency"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type recordedEvent struct {
	Type string
	Data any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType, data})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db           *gorm.DB
	catalog      CatalogService
	transactions TransactionService
	inventory    InventoryService
	movement     *movementService
	txRepo       repository.TransactionRepository
	publisher    *fakePublisher
	metrics      *metrics.Metrics
	logs         *observer.ObservedLogs
	actor        uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)
	m := metrics.New()
	pub := &fakePublisher{}

	store := repository.NewStore(db, 5*time.Second)
	items := repository.NewItemRepo(db, 5*time.Second)
	txs := repository.NewTransactionRepo(db, ledger.NewMonotonicClock(), 5*time.Second)

	return &fixture{
		db:           db,
		catalog:      NewCatalogService(store, items, txs, pub, m, log),
		transactions: NewTransactionService(items, txs, idempotency.NewMemoryStore(time.Hour), pub, m, log),
		inventory:    NewInventoryService(items, txs, m, log),
		movement:     NewMovementService(txs).(*movementService),
		txRepo:       txs,
		publisher:    pub,
		metrics:      m,
		logs:         logs,
		actor:        uuid.New(),
	}
}

func (f *fixture) record(t *testing.T, description, kind string, qty int) error {
	t.Helper()
	_, err := f.transactions.RecordTransaction(context.Background(), RecordTransactionInput{
		ActorID:     f.actor,
		Description: description,
		Kind:        kind,
		Quantity:    qty,
	})
	return err
}
