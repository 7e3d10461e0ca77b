package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is a catalog entry for a distinct kind of inventory good.
// Descriptions are stored lowercased and are unique; items are never deleted.
type Item struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   uuid.UUID `gorm:"type:varchar(36)" json:"created_by"`
}

// NormalizeDescription is the canonical form used for storage and lookup.
func NormalizeDescription(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// InventoryEntry is one row of the derived inventory view.
type InventoryEntry struct {
	ItemID      uint   `json:"id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Loaned      int    `json:"loaned"`
}
