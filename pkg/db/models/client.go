package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/pkg/enums"
)

// Client is an admin-managed customer account. AccountBalance moves only
// when a sale settles on the deferred account method; a negative balance is
// store credit, a positive one is debt.
type Client struct {
	ID                     uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                   string              `gorm:"column:name;not null" json:"name"`
	Phone                  string              `gorm:"column:phone" json:"phone"`
	Email                  string              `gorm:"column:email" json:"email"`
	PreferredPaymentMethod enums.PaymentMethod `gorm:"column:preferred_payment_method;type:text;not null;default:'cash'" json:"preferred_payment_method"`
	AccountBalance         int64               `gorm:"column:account_balance;not null;default:0" json:"account_balance"`
	LastOrderAt            *time.Time          `gorm:"column:last_order_at" json:"last_order_at,omitempty"`
	CreatedAt              time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
