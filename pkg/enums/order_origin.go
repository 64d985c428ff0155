package enums

import "fmt"

// OrderOrigin discriminates the three order shapes the platform produces.
type OrderOrigin string

const (
	OrderOriginWeb         OrderOrigin = "web"
	OrderOriginReseller    OrderOrigin = "reseller"
	OrderOriginAdminDirect OrderOrigin = "admin_direct"
)

var validOrderOrigins = []OrderOrigin{
	OrderOriginWeb,
	OrderOriginReseller,
	OrderOriginAdminDirect,
}

// String implements fmt.Stringer.
func (o OrderOrigin) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderOrigin.
func (o OrderOrigin) IsValid() bool {
	for _, candidate := range validOrderOrigins {
		if candidate == o {
			return true
		}
	}
	return false
}

// RequiresShipping reports whether orders of this origin ship physical goods
// to an address collected at checkout.
func (o OrderOrigin) RequiresShipping() bool {
	return o == OrderOriginWeb || o == OrderOriginAdminDirect
}

// ParseOrderOrigin converts raw input into an OrderOrigin.
func ParseOrderOrigin(value string) (OrderOrigin, error) {
	for _, candidate := range validOrderOrigins {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order origin %q", value)
}
