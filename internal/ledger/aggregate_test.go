package ledger

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, itemID uint, kind model.TransactionKind, qty int) model.Transaction {
	return model.Transaction{ID: id, ItemID: itemID, Kind: kind, Quantity: qty}
}

func TestAggregate_Empty(t *testing.T) {
	totals, err := Aggregate(1, nil)
	require.NoError(t, err)
	assert.Equal(t, Totals{}, totals)
}

func TestAggregate_PurchaseAndBorrow(t *testing.T) {
	txs := []model.Transaction{
		tx(1, 1, model.TxPurchase, 10),
		tx(2, 1, model.TxBorrow, 3),
	}

	totals, err := Aggregate(1, txs)
	require.NoError(t, err)
	assert.Equal(t, 10, totals.OnHand)
	assert.Equal(t, 3, totals.OnLoan)
}

func TestAggregate_AllKinds(t *testing.T) {
	txs := []model.Transaction{
		tx(1, 7, model.TxPurchase, 12),
		tx(2, 7, model.TxBorrow, 5),
		tx(3, 7, model.TxReturn, 2),
		tx(4, 7, model.TxDispose, 4),
		tx(5, 7, model.TxPurchase, 1),
	}

	totals, err := Aggregate(7, txs)
	require.NoError(t, err)
	assert.Equal(t, Totals{OnHand: 9, OnLoan: 3}, totals)
}

func TestAggregate_SkipsOtherItems(t *testing.T) {
	txs := []model.Transaction{
		tx(1, 1, model.TxPurchase, 4),
		tx(2, 2, model.TxDispose, 100),
		tx(3, 1, model.TxBorrow, 1),
	}

	totals, err := Aggregate(1, txs)
	require.NoError(t, err)
	assert.Equal(t, Totals{OnHand: 4, OnLoan: 1}, totals)
}

func TestAggregate_DisposeMoreThanPurchased(t *testing.T) {
	txs := []model.Transaction{
		tx(1, 1, model.TxPurchase, 10),
		tx(2, 1, model.TxDispose, 15),
	}

	totals, err := Aggregate(1, txs)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
	assert.Equal(t, -5, totals.OnHand, "raw value must not be clamped")
}

func TestAggregate_ReturnMoreThanBorrowed(t *testing.T) {
	txs := []model.Transaction{
		tx(1, 1, model.TxPurchase, 10),
		tx(2, 1, model.TxBorrow, 1),
		tx(3, 1, model.TxReturn, 2),
	}

	totals, err := Aggregate(1, txs)
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
	assert.Equal(t, -1, totals.OnLoan)
}

func TestAggregate_TemporaryDipIsFine(t *testing.T) {
	// Only the final fold is checked; order within the snapshot is irrelevant.
	txs := []model.Transaction{
		tx(1, 1, model.TxReturn, 2),
		tx(2, 1, model.TxBorrow, 2),
	}

	totals, err := Aggregate(1, txs)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.OnLoan)
}

func TestAggregate_CorruptRows(t *testing.T) {
	_, err := Aggregate(1, []model.Transaction{tx(1, 1, "steal", 1)})
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)

	_, err = Aggregate(1, []model.Transaction{tx(1, 1, model.TxPurchase, 0)})
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
}

func TestAggregate_OverflowIsNotReportedAsNegative(t *testing.T) {
	totals, err := Aggregate(1, []model.Transaction{
		tx(1, 1, model.TxPurchase, math.MaxInt),
		tx(2, 1, model.TxPurchase, 1),
	})
	require.ErrorIs(t, err, apperror.ErrQuantityOverflow)
	assert.NotErrorIs(t, err, apperror.ErrIntegrityViolation)
	assert.Equal(t, math.MaxInt, totals.OnHand, "the total before the overflowing row is kept")

	_, err = Aggregate(1, []model.Transaction{
		tx(1, 1, model.TxBorrow, math.MaxInt),
		tx(2, 1, model.TxReturn, math.MaxInt),
		tx(3, 1, model.TxReturn, math.MaxInt),
		tx(4, 1, model.TxReturn, 2),
	})
	assert.ErrorIs(t, err, apperror.ErrQuantityOverflow)

	totals, err = Aggregate(1, []model.Transaction{
		tx(1, 1, model.TxPurchase, math.MaxInt),
		tx(2, 1, model.TxDispose, 1),
		tx(3, 1, model.TxPurchase, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, totals.OnHand)
}

func TestAggregate_MatchesNaiveFold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		var txs []model.Transaction
		var purchased, disposed, borrowed, returned int
		onHand, onLoan := 0, 0

		n := rng.Intn(50)
		for i := 0; i < n; i++ {
			qty := rng.Intn(9) + 1
			kind := model.TransactionKinds[rng.Intn(len(model.TransactionKinds))]

			// keep the sequence valid so only the sums are under test
			switch kind {
			case model.TxDispose:
				if qty > onHand {
					kind = model.TxPurchase
				}
			case model.TxReturn:
				if qty > onLoan {
					kind = model.TxBorrow
				}
			}

			switch kind {
			case model.TxPurchase:
				purchased += qty
				onHand += qty
			case model.TxDispose:
				disposed += qty
				onHand -= qty
			case model.TxBorrow:
				borrowed += qty
				onLoan += qty
			case model.TxReturn:
				returned += qty
				onLoan -= qty
			}
			txs = append(txs, tx(uint(i+1), 3, kind, qty))
		}

		totals, err := Aggregate(3, txs)
		require.NoError(t, err)
		assert.Equal(t, purchased-disposed, totals.OnHand, "round %d", round)
		assert.Equal(t, borrowed-returned, totals.OnLoan, "round %d", round)
	}
}

func TestGroupByItem(t *testing.T) {
	groups := GroupByItem([]model.Transaction{
		tx(1, 1, model.TxPurchase, 1),
		tx(2, 2, model.TxPurchase, 2),
		tx(3, 1, model.TxBorrow, 1),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, []uint{1, 3}, []uint{groups[1][0].ID, groups[1][1].ID})
	assert.Len(t, groups[2], 1)
}

func TestMonotonicClock_NeverGoesBack(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	readings := []time.Time{base, base.Add(-time.Hour), base.Add(time.Second)}
	i := 0
	clock := &MonotonicClock{now: func() time.Time {
		r := readings[i]
		i++
		return r
	}}

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	assert.Equal(t, base, first)
	assert.Equal(t, base, second)
	assert.Equal(t, base.Add(time.Second), third)
}
