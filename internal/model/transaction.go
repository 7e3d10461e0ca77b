package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	TxBorrow   TransactionKind = "borrow"
	TxReturn   TransactionKind = "return"
	TxPurchase TransactionKind = "purchase"
	TxDispose  TransactionKind = "dispose"
)

// MaxQuantity bounds a single transaction so that ledger sums stay far from
// int overflow.
const MaxQuantity = math.MaxInt32

// TransactionKinds is the closed set of ledger event kinds.
var TransactionKinds = []TransactionKind{TxBorrow, TxReturn, TxPurchase, TxDispose}

// Valid reports whether k is one of the four ledger kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case TxBorrow, TxReturn, TxPurchase, TxDispose:
		return true
	}
	return false
}

// ParseTransactionKind accepts any casing and surrounding whitespace.
func ParseTransactionKind(s string) (TransactionKind, bool) {
	k := TransactionKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// Transaction is one immutable ledger event. Rows are only ever inserted.
type Transaction struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID    uint            `gorm:"not null;index:idx_transactions_item_time,priority:1" json:"item_id"`
	Item      *Item           `gorm:"foreignKey:ItemID" json:"-"`
	ActorID   uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"actor_id"`
	Kind      TransactionKind `gorm:"column:kind;type:varchar(16);not null;check:chk_transactions_kind,kind IN ('borrow','return','purchase','dispose')" json:"transaction_type"`
	Quantity  int             `gorm:"not null;check:chk_transactions_quantity,quantity > 0" json:"quantity"`
	Timestamp time.Time       `gorm:"column:occurred_at;not null;index:idx_transactions_item_time,priority:2" json:"date"`
}
