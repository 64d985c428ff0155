package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/pkg/enums"
	"github.com/brandhaus/storefront-backend/pkg/types"
)

// Order is the immutable settlement record produced at checkout confirmation.
// Origin discriminates the three shapes (web, reseller restock, admin direct);
// only web and admin orders carry a shipping block, only reseller orders carry
// a wholesale rate, and only web/admin orders may carry a coupon.
//
// Settlement invariant: AmountPaid + BalanceDue == TotalAmount at all times.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Origin           enums.OrderOrigin   `gorm:"column:origin;type:text;not null" json:"origin"`
	BuyerID          uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null" json:"buyer_id"`
	BuyerName        string              `gorm:"column:buyer_name;not null" json:"buyer_name"`
	SubtotalAmount   int64               `gorm:"column:subtotal_amount;not null" json:"subtotal_amount"`
	DiscountAmount   int64               `gorm:"column:discount_amount;not null;default:0" json:"discount_amount"`
	CouponCode       *string             `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	CouponPercent    *int                `gorm:"column:coupon_percent" json:"coupon_percent,omitempty"`
	WholesaleRateBps *int                `gorm:"column:wholesale_rate_bps" json:"wholesale_rate_bps,omitempty"`
	TotalAmount      int64               `gorm:"column:total_amount;not null" json:"total_amount"`
	AmountPaid       int64               `gorm:"column:amount_paid;not null" json:"amount_paid"`
	BalanceDue       int64               `gorm:"column:balance_due;not null" json:"balance_due"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:text;not null" json:"payment_status"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	PaymentType      enums.PaymentType   `gorm:"column:payment_type;type:text;not null" json:"payment_type"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	ShippingInfo     *types.ShippingInfo `gorm:"column:shipping_info;type:jsonb;serializer:json" json:"shipping_info,omitempty"`
	Lines            []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
	ShippedAt        *time.Time          `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
