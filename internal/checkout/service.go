package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/internal/catalog"
	"github.com/brandhaus/storefront-backend/internal/clients"
	"github.com/brandhaus/storefront-backend/internal/orders"
	"github.com/brandhaus/storefront-backend/internal/pricing"
	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
	"github.com/brandhaus/storefront-backend/pkg/metrics"
	"github.com/brandhaus/storefront-backend/pkg/types"
)

// Service turns carts into settled orders.
type Service interface {
	// Quote prices the cart without touching stock. It is the preview the
	// storefront shows before confirmation.
	Quote(ctx context.Context, input Input) (*pricing.Result, error)
	// Execute re-prices the cart and, in one transaction, decrements stock
	// and persists the order with its immutable line snapshots.
	Execute(ctx context.Context, input Input) (*models.Order, error)
}

// LineInput is one requested cart line. DiscountPercent is the per-line
// discount an admin may grant on direct sales; it defaults to zero.
type LineInput struct {
	ProductID       uuid.UUID
	Qty             int
	DiscountPercent int
}

// Input is a full checkout request. CouponCode is only legal for web and
// admin direct orders. WholesaleRateBps is an admin-only override for
// reseller restocks; left nil, the rate resolves from the reseller record
// and then the configured default.
type Input struct {
	Origin           enums.OrderOrigin
	BuyerID          uuid.UUID
	BuyerName        string
	Lines            []LineInput
	CouponCode       *string
	WholesaleRateBps *int
	PaymentMethod    enums.PaymentMethod
	PaymentType      enums.PaymentType
	ShippingInfo     *types.ShippingInfo
}

type couponLookup interface {
	Lookup(ctx context.Context, code string) (*models.Coupon, error)
}

// resellerLoader resolves the buyer of a restock order so the wholesale rate
// comes from the account record, never from the request body.
type resellerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reseller, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx             txRunner
	catalogRepo    *catalog.Repository
	ordersRepo     *orders.Repository
	clientsRepo    *clients.Repository
	coupons        couponLookup
	resellers      resellerLoader
	metrics        *metrics.CheckoutMetrics
	logg           *logger.Logger
	enabledMethods map[enums.PaymentMethod]bool
	defaultRateBps int
}

// NewService builds the checkout service. enabledMethods nil or empty means
// every known method is accepted. defaultRateBps prices restock orders whose
// reseller account carries no rate of its own.
func NewService(
	tx txRunner,
	catalogRepo *catalog.Repository,
	ordersRepo *orders.Repository,
	clientsRepo *clients.Repository,
	coupons couponLookup,
	resellers resellerLoader,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	enabledMethods []enums.PaymentMethod,
	defaultRateBps int,
) (Service, error) {
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if catalogRepo == nil {
		return nil, errors.New("catalog repo is required")
	}
	if ordersRepo == nil {
		return nil, errors.New("orders repo is required")
	}
	if clientsRepo == nil {
		return nil, errors.New("clients repo is required")
	}
	if coupons == nil {
		return nil, errors.New("coupon lookup is required")
	}
	if resellers == nil {
		return nil, errors.New("reseller loader is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	if defaultRateBps < 0 || defaultRateBps >= 10_000 {
		return nil, errors.New("default wholesale rate must be within [0, 10000) basis points")
	}

	var methods map[enums.PaymentMethod]bool
	if len(enabledMethods) > 0 {
		methods = make(map[enums.PaymentMethod]bool, len(enabledMethods))
		for _, m := range enabledMethods {
			methods[m] = true
		}
	}
	return &service{
		tx:             tx,
		catalogRepo:    catalogRepo,
		ordersRepo:     ordersRepo,
		clientsRepo:    clientsRepo,
		coupons:        coupons,
		resellers:      resellers,
		metrics:        checkoutMetrics,
		logg:           logg,
		enabledMethods: methods,
		defaultRateBps: defaultRateBps,
	}, nil
}

// priced is the intermediate result shared by Quote and Execute.
type priced struct {
	result           *pricing.Result
	products         []*models.Product
	couponCode       *string
	couponPercent    *int
	wholesaleRateBps *int
}

func (s *service) Quote(ctx context.Context, input Input) (*pricing.Result, error) {
	quoted, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}
	return quoted.result, nil
}

func (s *service) Execute(ctx context.Context, input Input) (*models.Order, error) {
	quoted, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}

	order := s.buildOrder(input, quoted)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalogRepo.WithTx(tx)
		for i, line := range input.Lines {
			ok, err := catalogRepo.DecrementStock(ctx, line.ProductID, line.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				s.metrics.IncStockRejection()
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("not enough stock for %s", quoted.products[i].Name)).
					WithDetails(map[string]any{"productId": line.ProductID, "requestedQty": line.Qty})
			}
		}

		if _, err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		// the deferred account method books the whole total as client debt
		if input.PaymentMethod == enums.PaymentMethodAccount {
			clientsRepo := s.clientsRepo.WithTx(tx)
			if err := clientsRepo.AdjustBalance(ctx, input.BuyerID, order.TotalAmount); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "charge client account")
			}
			if err := clientsRepo.TouchLastOrder(ctx, input.BuyerID, order.CreatedAt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp client last order")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderCreated(order.Origin.String(), order.TotalAmount)
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"origin":      order.Origin.String(),
		"totalAmount": order.TotalAmount,
	}), "order settled")
	return order, nil
}

// price validates the request and runs the pure pricing engine over fresh
// catalog and coupon reads.
func (s *service) price(ctx context.Context, input Input) (*priced, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	merged, err := mergeLines(input.Lines)
	if err != nil {
		return nil, err
	}
	input.Lines = merged

	quoted := &priced{products: make([]*models.Product, 0, len(input.Lines))}
	lines := make([]pricing.Line, 0, len(input.Lines))
	for _, line := range input.Lines {
		product, err := s.catalogRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not available", product.Name))
		}
		quoted.products = append(quoted.products, product)
		lines = append(lines, pricing.Line{
			UnitPriceAmount: product.PriceAmount,
			Qty:             line.Qty,
			DiscountPercent: line.DiscountPercent,
		})
	}

	if input.Origin == enums.OrderOriginReseller {
		rate, err := s.resolveWholesaleRate(ctx, input)
		if err != nil {
			return nil, err
		}
		quoted.wholesaleRateBps = &rate
	}

	pricingInput := pricing.Input{
		Lines:            lines,
		WholesaleRateBps: quoted.wholesaleRateBps,
		PaymentType:      input.PaymentType,
	}

	// the coupon is looked up fresh on every attempt; a code that went
	// inactive since the cart was built fails the checkout outright
	if input.CouponCode != nil {
		coupon, err := s.coupons.Lookup(ctx, *input.CouponCode)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInvalidCoupon {
				s.metrics.IncCouponRejection()
			}
			return nil, err
		}
		quoted.couponCode = &coupon.Code
		quoted.couponPercent = &coupon.DiscountPercent
		pricingInput.CouponPercent = &coupon.DiscountPercent
	}

	result, err := pricing.Quote(pricingInput)
	if err != nil {
		return nil, err
	}
	quoted.result = result
	return quoted, nil
}

// resolveWholesaleRate prices a restock order. An explicit rate on the input
// is an admin override (the handler rejects it from anyone else); otherwise
// the rate comes from the reseller's account record, then the configured
// default. The buyer must be a known reseller either way.
func (s *service) resolveWholesaleRate(ctx context.Context, input Input) (int, error) {
	reseller, err := s.resellers.FindByID(ctx, input.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "reseller not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reseller")
	}
	if !reseller.IsActive {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "reseller account is disabled")
	}
	if input.WholesaleRateBps != nil {
		return *input.WholesaleRateBps, nil
	}
	if reseller.WholesaleRateBps != nil {
		return *reseller.WholesaleRateBps, nil
	}
	return s.defaultRateBps, nil
}

// mergeLines folds duplicate product lines into one, summing quantities, so
// an order never carries two snapshots of the same product. Conflicting
// per-line discounts for one product are rejected.
func mergeLines(lines []LineInput) ([]LineInput, error) {
	merged := make([]LineInput, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			if merged[i].DiscountPercent != line.DiscountPercent {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					"conflicting discounts for the same product")
			}
			merged[i].Qty += line.Qty
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func (s *service) validate(input Input) error {
	if !input.Origin.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order origin")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart must not be empty")
	}
	for _, line := range input.Lines {
		if line.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if s.enabledMethods != nil && !s.enabledMethods[input.PaymentMethod] {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment method %s is not enabled", input.PaymentMethod))
	}
	if !input.PaymentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type")
	}
	if input.PaymentMethod == enums.PaymentMethodAccount && input.Origin != enums.OrderOriginAdminDirect {
		return pkgerrors.New(pkgerrors.CodeValidation, "account payment is only available on direct sales")
	}
	if input.CouponCode != nil && input.Origin == enums.OrderOriginReseller {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupons do not apply to restock orders")
	}
	if input.WholesaleRateBps != nil && input.Origin != enums.OrderOriginReseller {
		return pkgerrors.New(pkgerrors.CodeValidation, "wholesale rate only applies to restock orders")
	}
	if input.Origin.RequiresShipping() {
		if input.ShippingInfo == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping info is required")
		}
		if missing := input.ShippingInfo.Validate(); missing != "" {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("shipping %s is required", missing))
		}
	}
	return nil
}

// buildOrder freezes the quote into the order aggregate. Line snapshots copy
// the product fields so later catalog edits never rewrite history.
func (s *service) buildOrder(input Input, quoted *priced) *models.Order {
	result := quoted.result
	order := &models.Order{
		ID:               uuid.New(),
		Origin:           input.Origin,
		BuyerID:          input.BuyerID,
		BuyerName:        input.BuyerName,
		SubtotalAmount:   result.SubtotalAmount,
		DiscountAmount:   result.DiscountAmount,
		CouponCode:       quoted.couponCode,
		CouponPercent:    quoted.couponPercent,
		WholesaleRateBps: quoted.wholesaleRateBps,
		TotalAmount:      result.TotalAmount,
		AmountPaid:       result.PayNowAmount,
		BalanceDue:       result.PayLaterAmount,
		PaymentMethod:    input.PaymentMethod,
		PaymentType:      input.PaymentType,
		Status:           enums.OrderStatusPending,
		ShippingInfo:     input.ShippingInfo,
	}
	// the account method collects nothing up front: the whole total stays
	// owed on the order while the same amount lands on the client's balance
	if input.PaymentMethod == enums.PaymentMethodAccount {
		order.AmountPaid = 0
		order.BalanceDue = result.TotalAmount
	}
	order.PaymentStatus = enums.PaymentStatusPartial
	if order.BalanceDue <= 0 {
		order.PaymentStatus = enums.PaymentStatusPaid
	}

	order.Lines = make([]models.OrderLine, 0, len(result.Lines))
	for i, line := range result.Lines {
		product := quoted.products[i]
		order.Lines = append(order.Lines, models.OrderLine{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       product.ID,
			Name:            product.Name,
			Brand:           product.Brand,
			UnitPriceAmount: line.UnitPriceAmount,
			DiscountPercent: line.DiscountPercent,
			EffectiveAmount: line.EffectiveAmount,
			Qty:             line.Qty,
			LineTotalAmount: line.LineTotalAmount,
		})
	}
	return order
}
