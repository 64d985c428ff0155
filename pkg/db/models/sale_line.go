package models

import (
	"time"

	"github.com/google/uuid"
)

// SaleLine is a product snapshot within a reseller sale.
type SaleLine struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SaleID          uuid.UUID `gorm:"column:sale_id;type:uuid;not null" json:"sale_id"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	UnitPriceAmount int64     `gorm:"column:unit_price_amount;not null" json:"unit_price_amount"`
	DiscountPercent int       `gorm:"column:discount_percent;not null;default:0" json:"discount_percent"`
	EffectiveAmount int64     `gorm:"column:effective_amount;not null" json:"effective_amount"`
	Qty             int       `gorm:"column:qty;not null" json:"qty"`
	LineTotalAmount int64     `gorm:"column:line_total_amount;not null" json:"line_total_amount"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
