package pricing

import (
	"testing"

	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestQuoteFullNoDiscount(t *testing.T) {
	t.Parallel()

	res, err := Quote(Input{
		Lines:       []Line{{UnitPriceAmount: 1000, Qty: 2}},
		PaymentType: enums.PaymentTypeFull,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SubtotalAmount != 2000 || res.TotalAmount != 2000 {
		t.Fatalf("expected subtotal=total=2000, got %d/%d", res.SubtotalAmount, res.TotalAmount)
	}
	if res.PayNowAmount != 2000 || res.PayLaterAmount != 0 {
		t.Fatalf("expected full payment upfront, got now=%d later=%d", res.PayNowAmount, res.PayLaterAmount)
	}
}

func TestQuoteCouponAppliesOnceToSubtotal(t *testing.T) {
	t.Parallel()

	res, err := Quote(Input{
		Lines:         []Line{{UnitPriceAmount: 1000, Qty: 2}},
		CouponPercent: intPtr(10),
		PaymentType:   enums.PaymentTypeFull,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SubtotalAmount != 2000 {
		t.Fatalf("coupon must not touch the subtotal, got %d", res.SubtotalAmount)
	}
	if res.TotalAmount != 1800 || res.PayNowAmount != 1800 {
		t.Fatalf("expected total 1800, got total=%d now=%d", res.TotalAmount, res.PayNowAmount)
	}
	if res.DiscountAmount != 200 {
		t.Fatalf("expected discount 200, got %d", res.DiscountAmount)
	}
}

func TestQuoteDepositSplitsHalfUp(t *testing.T) {
	t.Parallel()

	res, err := Quote(Input{
		Lines:         []Line{{UnitPriceAmount: 1000, Qty: 2}},
		CouponPercent: intPtr(10),
		PaymentType:   enums.PaymentTypeDeposit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PayNowAmount != 900 || res.PayLaterAmount != 900 {
		t.Fatalf("expected 900/900 split, got now=%d later=%d", res.PayNowAmount, res.PayLaterAmount)
	}

	// odd totals round the deposit up and still re-add exactly
	odd, err := Quote(Input{
		Lines:       []Line{{UnitPriceAmount: 4999, Qty: 1}},
		PaymentType: enums.PaymentTypeDeposit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if odd.PayNowAmount != 2500 || odd.PayLaterAmount != 2499 {
		t.Fatalf("expected 2500/2499 split, got now=%d later=%d", odd.PayNowAmount, odd.PayLaterAmount)
	}
	if odd.PayNowAmount+odd.PayLaterAmount != odd.TotalAmount {
		t.Fatalf("split must re-add to total")
	}
}

func TestQuoteWholesaleRate(t *testing.T) {
	t.Parallel()

	res, err := Quote(Input{
		Lines:            []Line{{UnitPriceAmount: 1000, Qty: 10}},
		WholesaleRateBps: intPtr(3000),
		PaymentType:      enums.PaymentTypeFull,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SubtotalAmount != 10000 || res.TotalAmount != 7000 {
		t.Fatalf("expected 10000 -> 7000 at 30%%, got %d -> %d", res.SubtotalAmount, res.TotalAmount)
	}
}

func TestQuoteLineDiscountTruncatesAtLineStep(t *testing.T) {
	t.Parallel()

	// 999 * 85 / 100 = 849.15 -> 849 per unit, then multiplied by qty
	res, err := Quote(Input{
		Lines:       []Line{{UnitPriceAmount: 999, Qty: 3, DiscountPercent: 15}},
		PaymentType: enums.PaymentTypeFull,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Lines[0].EffectiveAmount != 849 {
		t.Fatalf("expected effective 849, got %d", res.Lines[0].EffectiveAmount)
	}
	if res.SubtotalAmount != 2547 {
		t.Fatalf("expected subtotal 2547, got %d", res.SubtotalAmount)
	}
}

func TestQuoteSubtotalIndependentOfLineOrder(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{UnitPriceAmount: 999, Qty: 3, DiscountPercent: 15},
		{UnitPriceAmount: 1000, Qty: 2},
		{UnitPriceAmount: 250, Qty: 7, DiscountPercent: 50},
	}
	reversed := []Line{lines[2], lines[1], lines[0]}

	a, err := Quote(Input{Lines: lines, PaymentType: enums.PaymentTypeFull})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Quote(Input{Lines: reversed, PaymentType: enums.PaymentTypeFull})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SubtotalAmount != b.SubtotalAmount {
		t.Fatalf("subtotal depends on line order: %d vs %d", a.SubtotalAmount, b.SubtotalAmount)
	}
}

func TestQuoteRejectsCouponWithWholesaleRate(t *testing.T) {
	t.Parallel()

	_, err := Quote(Input{
		Lines:            []Line{{UnitPriceAmount: 1000, Qty: 1}},
		CouponPercent:    intPtr(10),
		WholesaleRateBps: intPtr(3000),
		PaymentType:      enums.PaymentTypeFull,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestQuoteValidatesInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input Input
	}{
		{"empty cart", Input{PaymentType: enums.PaymentTypeFull}},
		{"zero qty", Input{Lines: []Line{{UnitPriceAmount: 100, Qty: 0}}, PaymentType: enums.PaymentTypeFull}},
		{"negative price", Input{Lines: []Line{{UnitPriceAmount: -1, Qty: 1}}, PaymentType: enums.PaymentTypeFull}},
		{"discount above 100", Input{Lines: []Line{{UnitPriceAmount: 100, Qty: 1, DiscountPercent: 101}}, PaymentType: enums.PaymentTypeFull}},
		{"bad payment type", Input{Lines: []Line{{UnitPriceAmount: 100, Qty: 1}}, PaymentType: enums.PaymentType("installments")}},
		{"coupon above 100", Input{Lines: []Line{{UnitPriceAmount: 100, Qty: 1}}, CouponPercent: intPtr(101), PaymentType: enums.PaymentTypeFull}},
		{"rate at denominator", Input{Lines: []Line{{UnitPriceAmount: 100, Qty: 1}}, WholesaleRateBps: intPtr(10000), PaymentType: enums.PaymentTypeFull}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Quote(tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("unexpected error code: %v", err)
			}
		})
	}
}

func TestQuoteHundredPercentCoupon(t *testing.T) {
	t.Parallel()

	res, err := Quote(Input{
		Lines:         []Line{{UnitPriceAmount: 1234, Qty: 1}},
		CouponPercent: intPtr(100),
		PaymentType:   enums.PaymentTypeDeposit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalAmount != 0 || res.PayNowAmount != 0 || res.PayLaterAmount != 0 {
		t.Fatalf("expected zero settlement, got %+v", res)
	}
}
