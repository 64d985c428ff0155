package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/pkg/enums"
)

// OrderLine is a product snapshot frozen at checkout. Later catalog edits
// never change it.
type OrderLine struct {
	ID              uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID   `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID       uuid.UUID   `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Name            string      `gorm:"column:name;not null" json:"name"`
	Brand           enums.Brand `gorm:"column:brand;type:text;not null" json:"brand"`
	UnitPriceAmount int64       `gorm:"column:unit_price_amount;not null" json:"unit_price_amount"`
	DiscountPercent int         `gorm:"column:discount_percent;not null;default:0" json:"discount_percent"`
	EffectiveAmount int64       `gorm:"column:effective_amount;not null" json:"effective_amount"`
	Qty             int         `gorm:"column:qty;not null" json:"qty"`
	LineTotalAmount int64       `gorm:"column:line_total_amount;not null" json:"line_total_amount"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
