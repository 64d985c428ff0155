// Package pricing computes cart quotes. It is pure: no I/O, no clock, no
// state. Callers re-quote whenever the cart, coupon or rate changes.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
)

const bpsDenominator = 10_000

// Line is one cart entry at its catalog price.
type Line struct {
	UnitPriceAmount int64
	Qty             int
	DiscountPercent int
}

// Input carries everything a quote depends on. CouponPercent and
// WholesaleRateBps are mutually exclusive: a coupon belongs to retail
// checkouts, the wholesale rate to reseller restocks.
type Input struct {
	Lines            []Line
	CouponPercent    *int
	WholesaleRateBps *int
	PaymentType      enums.PaymentType
}

// QuotedLine is a Line with its per-line discount resolved.
type QuotedLine struct {
	Line
	EffectiveAmount int64
	LineTotalAmount int64
}

// Result is a fully settled quote. PayNowAmount + PayLaterAmount always
// equals TotalAmount exactly.
type Result struct {
	Lines          []QuotedLine
	SubtotalAmount int64
	DiscountAmount int64
	TotalAmount    int64
	PayNowAmount   int64
	PayLaterAmount int64
}

// Quote prices a cart. Per-line discounts truncate at the line step; the
// order-level stage (coupon or wholesale) is applied once to the summed
// subtotal, never compounded per line.
func Quote(input Input) (*Result, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must not be empty")
	}
	if input.CouponPercent != nil && input.WholesaleRateBps != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon and wholesale rate are mutually exclusive")
	}
	if !input.PaymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	if input.CouponPercent != nil {
		if p := *input.CouponPercent; p < 0 || p > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon percent must be between 0 and 100")
		}
	}
	if input.WholesaleRateBps != nil {
		if r := *input.WholesaleRateBps; r < 0 || r >= bpsDenominator {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wholesale rate must be at least 0 and below 10000 basis points")
		}
	}

	result := &Result{Lines: make([]QuotedLine, 0, len(input.Lines))}
	for _, line := range input.Lines {
		if line.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		if line.UnitPriceAmount < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line price must not be negative")
		}
		if line.DiscountPercent < 0 || line.DiscountPercent > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line discount must be between 0 and 100")
		}

		effective := applyPercentOff(line.UnitPriceAmount, line.DiscountPercent)
		lineTotal := effective * int64(line.Qty)
		result.Lines = append(result.Lines, QuotedLine{
			Line:            line,
			EffectiveAmount: effective,
			LineTotalAmount: lineTotal,
		})
		result.SubtotalAmount += lineTotal
	}

	result.TotalAmount = result.SubtotalAmount
	switch {
	case input.CouponPercent != nil:
		result.TotalAmount = applyPercentOff(result.SubtotalAmount, *input.CouponPercent)
	case input.WholesaleRateBps != nil:
		result.TotalAmount = applyBpsOff(result.SubtotalAmount, *input.WholesaleRateBps)
	}
	result.DiscountAmount = result.SubtotalAmount - result.TotalAmount

	result.PayNowAmount, result.PayLaterAmount = split(result.TotalAmount, input.PaymentType)
	return result, nil
}

// split divides the total per payment type. Deposit pays half now rounded
// half-up, so the two halves always re-add to the total.
func split(total int64, paymentType enums.PaymentType) (payNow, payLater int64) {
	if paymentType == enums.PaymentTypeDeposit {
		payNow = (total + 1) / 2
		return payNow, total - payNow
	}
	return total, 0
}

func applyPercentOff(amount int64, percent int) int64 {
	if percent == 0 {
		return amount
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(100 - percent))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}

func applyBpsOff(amount int64, bps int) int64 {
	if bps == 0 {
		return amount
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(bpsDenominator - bps))).
		Div(decimal.NewFromInt(bpsDenominator)).
		Floor().
		IntPart()
}
