package service

import (
	"context"
	"testing"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/ws"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.catalog.CreateItem(ctx, f.actor, "  Tent ", 0)
	require.NoError(t, err)
	assert.Equal(t, "tent", item.Description)
	assert.Equal(t, f.actor, item.CreatedBy)
	assert.Equal(t, []string{ws.EventItemCreated}, f.publisher.types())
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ItemsCreated))

	found, err := f.catalog.FindByDescription(ctx, "TENT")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
}

func TestCatalogService_CreateItemRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateItem(ctx, f.actor, "Tent", 0)
	require.NoError(t, err)

	_, err = f.catalog.CreateItem(ctx, f.actor, "tENT", 0)
	assert.ErrorIs(t, err, apperror.ErrDuplicateItem)
	assert.Equal(t, "Item already exists", apperror.Message(err))

	items, err := f.catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCatalogService_CreateItemRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateItem(ctx, f.actor, "   ", 0)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.catalog.CreateItem(ctx, f.actor, "tent", -1)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.catalog.CreateItem(ctx, f.actor, "tent", model.MaxQuantity+1)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	items, err := f.catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalogService_CreateItemWithInitialStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.catalog.CreateItem(ctx, f.actor, "Stove", 4)
	require.NoError(t, err)

	history, err := f.inventory.GetItemHistory(ctx, "stove")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, item.ID, history[0].ItemID)
	assert.Equal(t, model.TxPurchase, history[0].Kind)
	assert.Equal(t, 4, history[0].Quantity)
	assert.Equal(t, f.actor, history[0].ActorID)

	assert.Equal(t, []string{ws.EventItemCreated, ws.EventTransactionRecorded}, f.publisher.types())
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.TransactionsRecorded.WithLabelValues("purchase")))
}
