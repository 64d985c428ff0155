package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/pkg/enums"
)

// Message is one entry in the two-party thread between admin and a reseller.
type Message struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ResellerID uuid.UUID           `gorm:"column:reseller_id;type:uuid;not null;index" json:"reseller_id"`
	Sender     enums.MessageSender `gorm:"column:sender;type:text;not null" json:"sender"`
	Body       string              `gorm:"column:body;not null" json:"body"`
	ReadAt     *time.Time          `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
