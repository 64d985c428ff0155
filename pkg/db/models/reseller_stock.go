package models

import (
	"time"

	"github.com/google/uuid"
)

// ResellerStock tracks a reseller's local shelf count per product,
// independent from the catalog's global stock.
type ResellerStock struct {
	ResellerID uuid.UUID `gorm:"column:reseller_id;type:uuid;primaryKey" json:"reseller_id"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey" json:"product_id"`
	Qty        int       `gorm:"column:qty;not null;default:0" json:"qty"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
