package types

import "strings"

// ShippingInfo is the delivery block captured at checkout for shipped-goods
// orders. Stored as jsonb alongside the order snapshot.
type ShippingInfo struct {
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Notes   *string `json:"notes,omitempty"`
}

// Validate reports the first missing required field, or "".
func (s ShippingInfo) Validate() string {
	if strings.TrimSpace(s.Address) == "" {
		return "address"
	}
	if strings.TrimSpace(s.Phone) == "" {
		return "phone"
	}
	return ""
}
