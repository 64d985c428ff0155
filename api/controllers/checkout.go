package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/api/middleware"
	"github.com/brandhaus/storefront-backend/api/responses"
	"github.com/brandhaus/storefront-backend/api/validators"
	"github.com/brandhaus/storefront-backend/internal/checkout"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
	"github.com/brandhaus/storefront-backend/pkg/types"
)

type checkoutLineRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	Qty             int    `json:"qty" validate:"required,min=1"`
	DiscountPercent int    `json:"discount_percent" validate:"omitempty,min=0,max=100"`
}

type shippingInfoRequest struct {
	Address string  `json:"address" validate:"required"`
	Phone   string  `json:"phone" validate:"required"`
	Notes   *string `json:"notes,omitempty"`
}

type checkoutRequest struct {
	Origin           string                `json:"origin" validate:"required"`
	BuyerID          string                `json:"buyer_id" validate:"required,uuid"`
	BuyerName        string                `json:"buyer_name" validate:"required,max=200"`
	Lines            []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
	CouponCode       *string               `json:"coupon_code,omitempty"`
	WholesaleRateBps *int                  `json:"wholesale_rate_bps,omitempty" validate:"omitempty,min=0,max=9999"`
	PaymentMethod    string                `json:"payment_method" validate:"required"`
	PaymentType      string                `json:"payment_type" validate:"required"`
	ShippingInfo     *shippingInfoRequest  `json:"shipping_info,omitempty"`
}

func (p checkoutRequest) toInput() (checkout.Input, error) {
	origin, err := enums.ParseOrderOrigin(strings.TrimSpace(p.Origin))
	if err != nil {
		return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid origin")
	}
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(p.PaymentMethod))
	if err != nil {
		return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	payType, err := enums.ParsePaymentType(strings.TrimSpace(p.PaymentType))
	if err != nil {
		return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type")
	}
	buyerID, err := uuid.Parse(p.BuyerID)
	if err != nil {
		return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid buyer id")
	}

	lines := make([]checkout.LineInput, 0, len(p.Lines))
	for _, line := range p.Lines {
		productID, parseErr := uuid.Parse(line.ProductID)
		if parseErr != nil {
			return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product id")
		}
		lines = append(lines, checkout.LineInput{
			ProductID:       productID,
			Qty:             line.Qty,
			DiscountPercent: line.DiscountPercent,
		})
	}

	input := checkout.Input{
		Origin:           origin,
		BuyerID:          buyerID,
		BuyerName:        validators.SanitizeString(p.BuyerName, 200),
		Lines:            lines,
		CouponCode:       p.CouponCode,
		WholesaleRateBps: p.WholesaleRateBps,
		PaymentMethod:    method,
		PaymentType:      payType,
	}
	if p.ShippingInfo != nil {
		input.ShippingInfo = &types.ShippingInfo{
			Address: p.ShippingInfo.Address,
			Phone:   p.ShippingInfo.Phone,
			Notes:   p.ShippingInfo.Notes,
		}
	}
	return input, nil
}

// QuoteCart prices a cart without reserving anything.
func QuoteCart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// originAllowed gates non-web checkouts on the caller's role. Web orders are
// open; direct sales need the admin role and restocks a reseller (or admin
// acting on their behalf).
func originAllowed(role string, origin enums.OrderOrigin) bool {
	switch origin {
	case enums.OrderOriginWeb:
		return true
	case enums.OrderOriginAdminDirect:
		return role == middleware.RoleAdmin
	case enums.OrderOriginReseller:
		return role == middleware.RoleReseller || role == middleware.RoleAdmin
	}
	return false
}

// Checkout settles the cart into an immutable order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role := middleware.RoleFromContext(r.Context())
		if !originAllowed(role, input.Origin) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "order origin not permitted for this caller"))
			return
		}
		// the wholesale rate on a restock resolves from the reseller record;
		// only an admin may override it per order
		if input.WholesaleRateBps != nil && role != middleware.RoleAdmin {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "wholesale rate override requires an admin"))
			return
		}
		order, err := svc.Execute(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
