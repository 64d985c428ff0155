package models

import (
	"time"

	"github.com/google/uuid"
)

// Reseller is a wholesale partner account. Points are a resettable wallet
// derived from settled sales; the sales history itself is never erased when
// a period closes.
type Reseller struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name             string          `gorm:"column:name;not null" json:"name"`
	Email            string          `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash     string          `gorm:"column:password_hash;not null" json:"-"`
	Region           string          `gorm:"column:region;not null" json:"region"`
	WholesaleRateBps *int            `gorm:"column:wholesale_rate_bps" json:"wholesale_rate_bps,omitempty"`
	Points           int64           `gorm:"column:points;not null;default:0" json:"points"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Stock            []ResellerStock `gorm:"foreignKey:ResellerID;constraint:OnDelete:CASCADE" json:"stock,omitempty"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
