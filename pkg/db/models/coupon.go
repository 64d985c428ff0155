package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is an admin-defined percentage discount redeemable by code.
// Code is stored in its canonical uppercase form.
type Coupon struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code            string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	DiscountPercent int       `gorm:"column:discount_percent;not null" json:"discount_percent"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
