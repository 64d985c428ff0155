// Package notify renders human-readable order confirmations. The output is
// plain text suitable for a messaging channel or an email body.
package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
)

// FormatAmount renders a minor-unit amount as a currency string.
func FormatAmount(amount int64) string {
	return "$" + decimal.New(amount, -2).StringFixed(2)
}

// OrderSummary renders a confirmation for a settled order. Discount, balance
// and shipping blocks only appear when the order carries them.
func OrderSummary(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pedido %s\n", order.ID)
	fmt.Fprintf(&b, "Cliente: %s\n\n", order.BuyerName)

	for _, line := range order.Lines {
		fmt.Fprintf(&b, "  %d x %s: %s\n", line.Qty, line.Name, FormatAmount(line.LineTotalAmount))
	}
	b.WriteString("\n")

	if order.DiscountAmount > 0 {
		fmt.Fprintf(&b, "Subtotal: %s\n", FormatAmount(order.SubtotalAmount))
		if order.CouponCode != nil && order.CouponPercent != nil {
			fmt.Fprintf(&b, "Cupón %s (-%d%%): -%s\n", *order.CouponCode, *order.CouponPercent, FormatAmount(order.DiscountAmount))
		} else {
			fmt.Fprintf(&b, "Descuento: -%s\n", FormatAmount(order.DiscountAmount))
		}
	}
	fmt.Fprintf(&b, "Total: %s\n", FormatAmount(order.TotalAmount))
	fmt.Fprintf(&b, "Pago: %s\n", order.PaymentMethod)
	fmt.Fprintf(&b, "Pagado: %s\n", FormatAmount(order.AmountPaid))
	if order.BalanceDue > 0 {
		fmt.Fprintf(&b, "Saldo pendiente: %s\n", FormatAmount(order.BalanceDue))
	}

	if order.ShippingInfo != nil {
		b.WriteString("\nEnvío:\n")
		fmt.Fprintf(&b, "  %s\n", order.ShippingInfo.Address)
		fmt.Fprintf(&b, "  Tel: %s\n", order.ShippingInfo.Phone)
		if order.ShippingInfo.Notes != nil && *order.ShippingInfo.Notes != "" {
			fmt.Fprintf(&b, "  Nota: %s\n", *order.ShippingInfo.Notes)
		}
	}

	return b.String()
}
