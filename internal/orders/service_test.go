package orders

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  origin TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  buyer_name TEXT NOT NULL,
  subtotal_amount INTEGER NOT NULL,
  discount_amount INTEGER NOT NULL DEFAULT 0,
  coupon_code TEXT,
  coupon_percent INTEGER,
  wholesale_rate_bps INTEGER,
  total_amount INTEGER NOT NULL,
  amount_paid INTEGER NOT NULL,
  balance_due INTEGER NOT NULL,
  payment_status TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  payment_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  shipping_info TEXT,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  unit_price_amount INTEGER NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  effective_amount INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  line_total_amount INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(orders).Error)
	require.NoError(t, conn.Exec(orderLines).Error)
	return conn
}

type ordersTestTx struct {
	db *gorm.DB
}

func (r *ordersTestTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newOrdersTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := setupOrdersTestDB(t)
	svc, err := NewService(&ordersTestTx{db: conn}, NewRepository(conn), nil, logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, conn
}

func createTestOrder(t *testing.T, conn *gorm.DB, status enums.OrderStatus, total, paid int64) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:             uuid.New(),
		Origin:         enums.OrderOriginWeb,
		BuyerID:        uuid.New(),
		BuyerName:      "Buyer",
		SubtotalAmount: total,
		TotalAmount:    total,
		AmountPaid:     paid,
		BalanceDue:     total - paid,
		PaymentStatus:  enums.PaymentStatusPartial,
		PaymentMethod:  enums.PaymentMethodCard,
		PaymentType:    enums.PaymentTypeDeposit,
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if order.BalanceDue == 0 {
		order.PaymentStatus = enums.PaymentStatusPaid
	}
	require.NoError(t, conn.Create(order).Error)

	line := &models.OrderLine{
		ID:              uuid.New(),
		OrderID:         order.ID,
		ProductID:       uuid.New(),
		Name:            "Line Item",
		Brand:           enums.BrandMeridian,
		UnitPriceAmount: total,
		EffectiveAmount: total,
		Qty:             1,
		LineTotalAmount: total,
	}
	require.NoError(t, conn.Create(line).Error)
	return order
}

func TestAdvanceStatusHappyPath(t *testing.T) {
	svc, conn := newOrdersTestService(t)
	ctx := context.Background()
	order := createTestOrder(t, conn, enums.OrderStatusPending, 2000, 2000)

	shipped, err := svc.AdvanceStatus(ctx, order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, shipped.Status)
	require.NotNil(t, shipped.ShippedAt)

	delivered, err := svc.AdvanceStatus(ctx, order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestAdvanceStatusCancelOnlyFromPending(t *testing.T) {
	svc, conn := newOrdersTestService(t)
	ctx := context.Background()

	pending := createTestOrder(t, conn, enums.OrderStatusPending, 2000, 2000)
	cancelled, err := svc.AdvanceStatus(ctx, pending.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelledAt)

	shipped := createTestOrder(t, conn, enums.OrderStatusShipped, 2000, 2000)
	_, err = svc.AdvanceStatus(ctx, shipped.ID, enums.OrderStatusCancelled)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestAdvanceStatusRejectsSkipsAndBackwardMoves(t *testing.T) {
	svc, conn := newOrdersTestService(t)
	ctx := context.Background()

	cases := []struct {
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
		{enums.OrderStatusShipped, enums.OrderStatusPending},
		{enums.OrderStatusDelivered, enums.OrderStatusShipped},
		{enums.OrderStatusCancelled, enums.OrderStatusShipped},
		{enums.OrderStatusPending, enums.OrderStatusPending},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_to_%s", tc.from, tc.to), func(t *testing.T) {
			order := createTestOrder(t, conn, tc.from, 1000, 1000)
			_, err := svc.AdvanceStatus(ctx, order.ID, tc.to)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
		})
	}
}

func TestAdvanceStatusUnknownTarget(t *testing.T) {
	svc, conn := newOrdersTestService(t)
	order := createTestOrder(t, conn, enums.OrderStatusPending, 1000, 1000)

	_, err := svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatus("archived"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSettleBalance(t *testing.T) {
	svc, conn := newOrdersTestService(t)
	ctx := context.Background()
	order := createTestOrder(t, conn, enums.OrderStatusPending, 1800, 900)

	settled, err := svc.SettleBalance(ctx, order.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1800, settled.AmountPaid)
	require.EqualValues(t, 0, settled.BalanceDue)
	require.Equal(t, enums.PaymentStatusPaid, settled.PaymentStatus)
	require.Equal(t, settled.TotalAmount, settled.AmountPaid+settled.BalanceDue)

	// second call is a no-op, never a double count
	again, err := svc.SettleBalance(ctx, order.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1800, again.AmountPaid)
	require.EqualValues(t, 0, again.BalanceDue)
}

func TestDeleteRemovesOrderAndLines(t *testing.T) {
	svc, conn := newOrdersTestService(t)
	ctx := context.Background()
	order := createTestOrder(t, conn, enums.OrderStatusPending, 1000, 1000)

	require.NoError(t, svc.Delete(ctx, order.ID))

	_, err := svc.Get(ctx, order.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	var lineCount int64
	require.NoError(t, conn.Model(&models.OrderLine{}).Where("order_id = ?", order.ID).Count(&lineCount).Error)
	require.EqualValues(t, 0, lineCount)
}

func TestListFiltersByStatusAndOrigin(t *testing.T) {
	svc, conn := newOrdersTestService(t)
	ctx := context.Background()

	createTestOrder(t, conn, enums.OrderStatusPending, 1000, 1000)
	createTestOrder(t, conn, enums.OrderStatusShipped, 2000, 2000)

	status := enums.OrderStatusShipped
	listed, err := svc.List(ctx, ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, enums.OrderStatusShipped, listed[0].Status)
	require.Len(t, listed[0].Lines, 1)
}
