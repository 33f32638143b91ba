package models

import "time"

// InventoryItem is a single unit in storage. Identifiers are monotonically
// assigned, so the largest id is the most recently added unit.
type InventoryItem struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (InventoryItem) TableName() string {
	return "products"
}
