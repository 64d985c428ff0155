package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/pkg/enums"
)

// Product is a catalog listing under one of the house brands. Stock counts
// global warehouse inventory; reseller shelves keep their own ledger.
type Product struct {
	ID          uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Brand       enums.Brand `gorm:"column:brand;type:text;not null" json:"brand"`
	Category    string      `gorm:"column:category;not null" json:"category"`
	Name        string      `gorm:"column:name;not null" json:"name"`
	PriceAmount int64       `gorm:"column:price_amount;not null" json:"price_amount"`
	Stock       int         `gorm:"column:stock;not null;default:0" json:"stock"`
	IsActive    bool        `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
