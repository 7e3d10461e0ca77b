// Package ledger derives inventory quantities from the append-only
// transaction log. Nothing here touches storage: every function is a fold
// over the snapshot it is given.
package ledger

import (
	"math"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
)

// Totals are the derived quantities of one item.
//
//	OnHand = Σ purchase − Σ dispose
//	OnLoan = Σ borrow   − Σ return
type Totals struct {
	OnHand int `json:"quantity"`
	OnLoan int `json:"loaned"`
}

// Apply adds the signed delta of one transaction. Rows that could never have
// been appended (unknown kind, non-positive quantity) are reported, and a sum
// that would leave the int range fails with ErrQuantityOverflow.
func (t *Totals) Apply(tx model.Transaction) error {
	if tx.Quantity <= 0 {
		return apperror.Newf(apperror.ErrIntegrityViolation,
			"transaction %d has non-positive quantity %d", tx.ID, tx.Quantity)
	}
	var (
		total *int
		delta int
	)
	switch tx.Kind {
	case model.TxPurchase:
		total, delta = &t.OnHand, tx.Quantity
	case model.TxDispose:
		total, delta = &t.OnHand, -tx.Quantity
	case model.TxBorrow:
		total, delta = &t.OnLoan, tx.Quantity
	case model.TxReturn:
		total, delta = &t.OnLoan, -tx.Quantity
	default:
		return apperror.Newf(apperror.ErrIntegrityViolation,
			"transaction %d has unknown kind %q", tx.ID, tx.Kind)
	}
	if (delta > 0 && *total > math.MaxInt-delta) || (delta < 0 && *total < math.MinInt-delta) {
		return apperror.Newf(apperror.ErrQuantityOverflow,
			"transaction %d overflows the %s total of item %d", tx.ID, tx.Kind, tx.ItemID)
	}
	*total += delta
	return nil
}

// Check fails when either aggregate went negative. The values are never
// clamped.
func (t Totals) Check(itemID uint) error {
	if t.OnHand < 0 {
		return apperror.Newf(apperror.ErrIntegrityViolation,
			"item %d: quantity on hand is %d (more disposed than purchased)", itemID, t.OnHand)
	}
	if t.OnLoan < 0 {
		return apperror.Newf(apperror.ErrIntegrityViolation,
			"item %d: quantity on loan is %d (more returned than borrowed)", itemID, t.OnLoan)
	}
	return nil
}

// Aggregate folds the transactions belonging to itemID. Transactions of other
// items are skipped, so the whole ledger may be passed in. On an integrity
// violation the raw totals are still returned for diagnostics.
func Aggregate(itemID uint, transactions []model.Transaction) (Totals, error) {
	var totals Totals
	for _, tx := range transactions {
		if tx.ItemID != itemID {
			continue
		}
		if err := totals.Apply(tx); err != nil {
			return totals, err
		}
	}
	return totals, totals.Check(itemID)
}

// GroupByItem splits a ledger snapshot per item, keeping the input order.
func GroupByItem(transactions []model.Transaction) map[uint][]model.Transaction {
	groups := make(map[uint][]model.Transaction)
	for _, tx := range transactions {
		groups[tx.ItemID] = append(groups[tx.ItemID], tx)
	}
	return groups
}
