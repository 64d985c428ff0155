package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/pkg/enums"
)

// Sale records a reseller selling to one of its own clients, out of its
// local stock. Points awarded at recording time are kept on the row so a
// later wallet reset does not lose the audit trail.
type Sale struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ResellerID     uuid.UUID           `gorm:"column:reseller_id;type:uuid;not null;index" json:"reseller_id"`
	ClientID       *uuid.UUID          `gorm:"column:client_id;type:uuid" json:"client_id,omitempty"`
	ClientName     string              `gorm:"column:client_name;not null" json:"client_name"`
	SubtotalAmount int64               `gorm:"column:subtotal_amount;not null" json:"subtotal_amount"`
	TotalAmount    int64               `gorm:"column:total_amount;not null" json:"total_amount"`
	AmountPaid     int64               `gorm:"column:amount_paid;not null" json:"amount_paid"`
	BalanceDue     int64               `gorm:"column:balance_due;not null" json:"balance_due"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null" json:"payment_status"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	PointsAwarded  int64               `gorm:"column:points_awarded;not null;default:0" json:"points_awarded"`
	Lines          []SaleLine          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"lines"`
	SoldAt         time.Time           `gorm:"column:sold_at;not null" json:"sold_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
