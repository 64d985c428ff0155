package enums

import "fmt"

// Brand identifies the house brand a product is sold under.
type Brand string

const (
	BrandAurora   Brand = "aurora"
	BrandHelios   Brand = "helios"
	BrandMeridian Brand = "meridian"
	BrandVela     Brand = "vela"
)

var validBrands = []Brand{
	BrandAurora,
	BrandHelios,
	BrandMeridian,
	BrandVela,
}

// String implements fmt.Stringer.
func (b Brand) String() string {
	return string(b)
}

// IsValid reports whether the value is a known Brand.
func (b Brand) IsValid() bool {
	for _, candidate := range validBrands {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBrand converts raw input into a Brand.
func ParseBrand(value string) (Brand, error) {
	for _, candidate := range validBrands {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid brand %q", value)
}
