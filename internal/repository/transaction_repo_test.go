package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stepClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func seedItem(t *testing.T, items repository.ItemRepository, description string) *model.Item {
	t.Helper()
	item := &model.Item{Description: description}
	require.NoError(t, items.Create(context.Background(), item))
	return item
}

func TestTransactionRepo_AppendAndList(t *testing.T) {
	db := testutil.NewDB(t)
	items := repository.NewItemRepo(db, time.Second)
	txs := repository.NewTransactionRepo(db, ledger.NewMonotonicClock(), time.Second)
	ctx := context.Background()
	actor := uuid.New()

	tent := seedItem(t, items, "Tent")
	stove := seedItem(t, items, "Stove")

	_, err := txs.Append(ctx, tent.ID, actor, model.TxPurchase, 10)
	require.NoError(t, err)
	_, err = txs.Append(ctx, stove.ID, actor, model.TxPurchase, 2)
	require.NoError(t, err)
	rec, err := txs.Append(ctx, tent.ID, actor, model.TxBorrow, 3)
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, actor, rec.ActorID)
	assert.Equal(t, model.TxBorrow, rec.Kind)

	history, err := txs.ListByItem(ctx, tent.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.TxPurchase, history[0].Kind)
	assert.Equal(t, model.TxBorrow, history[1].Kind)
	assert.False(t, history[1].Timestamp.Before(history[0].Timestamp))

	all, err := txs.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	totals, err := ledger.Aggregate(tent.ID, all)
	require.NoError(t, err)
	assert.Equal(t, ledger.Totals{OnHand: 10, OnLoan: 3}, totals)
}

func TestTransactionRepo_AppendRejectsBadInput(t *testing.T) {
	db := testutil.NewDB(t)
	items := repository.NewItemRepo(db, time.Second)
	txs := repository.NewTransactionRepo(db, ledger.NewMonotonicClock(), time.Second)
	ctx := context.Background()
	tent := seedItem(t, items, "tent")

	_, err := txs.Append(ctx, tent.ID, uuid.New(), model.TxBorrow, 0)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = txs.Append(ctx, tent.ID, uuid.New(), model.TransactionKind("steal"), 1)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = txs.Append(ctx, tent.ID, uuid.Nil, model.TxBorrow, 1)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = txs.Append(ctx, tent.ID, uuid.New(), model.TxPurchase, model.MaxQuantity+1)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = txs.Append(ctx, tent.ID+100, uuid.New(), model.TxBorrow, 1)
	assert.ErrorIs(t, err, apperror.ErrUnknownItem)

	all, err := txs.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransactionRepo_TimestampNeverGoesBackwards(t *testing.T) {
	db := testutil.NewDB(t)
	items := repository.NewItemRepo(db, time.Second)
	later := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)
	clock := &stepClock{times: []time.Time{later, earlier}}
	txs := repository.NewTransactionRepo(db, clock, time.Second)
	ctx := context.Background()
	tent := seedItem(t, items, "tent")

	first, err := txs.Append(ctx, tent.ID, uuid.New(), model.TxPurchase, 5)
	require.NoError(t, err)
	second, err := txs.Append(ctx, tent.ID, uuid.New(), model.TxBorrow, 1)
	require.NoError(t, err)

	assert.True(t, second.Timestamp.Equal(first.Timestamp))

	history, err := txs.ListByItem(ctx, tent.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
}

func TestTransactionRepo_ConcurrentAppendsAreAllKept(t *testing.T) {
	db := testutil.NewDB(t)
	items := repository.NewItemRepo(db, 5*time.Second)
	txs := repository.NewTransactionRepo(db, ledger.NewMonotonicClock(), 5*time.Second)
	ctx := context.Background()
	tent := seedItem(t, items, "tent")

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := txs.Append(ctx, tent.ID, uuid.New(), model.TxPurchase, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := txs.ListByItem(ctx, tent.ID)
	require.NoError(t, err)
	require.Len(t, history, workers)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestTransactionRepo_ListBetween(t *testing.T) {
	db := testutil.NewDB(t)
	items := repository.NewItemRepo(db, time.Second)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := &stepClock{times: []time.Time{day.Add(time.Hour), day.Add(25 * time.Hour), day.Add(49 * time.Hour)}}
	txs := repository.NewTransactionRepo(db, clock, time.Second)
	ctx := context.Background()
	tent := seedItem(t, items, "tent")

	for i := 0; i < 3; i++ {
		_, err := txs.Append(ctx, tent.ID, uuid.New(), model.TxPurchase, i+1)
		require.NoError(t, err)
	}

	got, err := txs.ListBetween(ctx, day.Add(24*time.Hour), day.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)
}

func TestTransactionRepo_WithTxRollsBackTogether(t *testing.T) {
	db := testutil.NewDB(t)
	store := repository.NewStore(db, time.Second)
	items := repository.NewItemRepo(db, time.Second)
	txs := repository.NewTransactionRepo(db, ledger.NewMonotonicClock(), time.Second)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx *gorm.DB) error {
		item := &model.Item{Description: "lantern"}
		if err := items.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		_, err := txs.WithTx(tx).Append(ctx, item.ID, uuid.New(), model.TxPurchase, 0)
		return err
	})
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = items.FindByDescription(ctx, "lantern")
	assert.ErrorIs(t, err, apperror.ErrItemNotFound)
}
