package resellers

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

	"github.com/brandhaus/storefront-backend/internal/clients"
	"github.com/brandhaus/storefront-backend/pkg/config"
	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

func setupResellersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS resellers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  region TEXT NOT NULL,
  wholesale_rate_bps INTEGER,
  points INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS reseller_stock (
  reseller_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME,
  PRIMARY KEY (reseller_id, product_id)
);`, `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  reseller_id TEXT NOT NULL,
  client_id TEXT,
  client_name TEXT NOT NULL,
  subtotal_amount INTEGER NOT NULL,
  total_amount INTEGER NOT NULL,
  amount_paid INTEGER NOT NULL,
  balance_due INTEGER NOT NULL,
  payment_status TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  points_awarded INTEGER NOT NULL DEFAULT 0,
  sold_at DATETIME NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sale_lines (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_amount INTEGER NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  effective_amount INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  line_total_amount INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  brand TEXT NOT NULL,
  category TEXT NOT NULL,
  name TEXT NOT NULL,
  price_amount INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  preferred_payment_method TEXT NOT NULL DEFAULT 'cash',
  account_balance INTEGER NOT NULL DEFAULT 0,
  last_order_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type resellersTestTx struct {
	db *gorm.DB
}

func (r *resellersTestTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type testProductLoader struct {
	db *gorm.DB
}

func (l *testProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := l.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newResellersTestService(t *testing.T, conn *gorm.DB) (Service, *Repository) {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "resellers-test", Output: io.Discard})
	repo := NewRepository(conn)
	svc, err := NewService(
		&resellersTestTx{db: conn},
		repo,
		&testProductLoader{db: conn},
		clients.NewRepository(conn),
		testPasswordConfig(),
		1000,
		logg,
	)
	require.NoError(t, err)
	return svc, repo
}

func seedTestReseller(t *testing.T, conn *gorm.DB, name string, points int64) *models.Reseller {
	t.Helper()

	reseller := &models.Reseller{
		ID:           uuid.New(),
		Name:         name,
		Email:        fmt.Sprintf("%s@example.test", uuid.NewString()),
		PasswordHash: "unused",
		Region:       "north",
		Points:       points,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(reseller).Error)
	return reseller
}

func seedSaleProduct(t *testing.T, conn *gorm.DB, name string, price int64) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New(),
		Brand:       enums.BrandAurora,
		Category:    "outerwear",
		Name:        name,
		PriceAmount: price,
		Stock:       100,
		IsActive:    true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedShelf(t *testing.T, conn *gorm.DB, resellerID, productID uuid.UUID, qty int) {
	t.Helper()
	require.NoError(t, conn.Create(&models.ResellerStock{
		ResellerID: resellerID,
		ProductID:  productID,
		Qty:        qty,
	}).Error)
}

func TestCreateAndAuthenticateReseller(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	rate := 3000
	created, err := svc.Create(ctx, CreateInput{
		Name:             "Norte Distribución",
		Email:            "norte@example.test",
		Password:         "s3cret-pass",
		Region:           "north",
		WholesaleRateBps: &rate,
	})
	require.NoError(t, err)
	require.True(t, created.IsActive)
	require.NotEqual(t, "s3cret-pass", created.PasswordHash)

	authed, err := svc.Authenticate(ctx, "norte@example.test", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, created.ID, authed.ID)

	_, err = svc.Authenticate(ctx, "norte@example.test", "wrong")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Name:     "Sur Mayorista",
		Email:    "sur@example.test",
		Password: "s3cret-pass",
		Region:   "south",
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, created.ID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "sur@example.test", "s3cret-pass")
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCreateResellerValidation(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	badRate := 10_000
	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing name", CreateInput{Email: "a@example.test", Region: "north"}},
		{"missing email", CreateInput{Name: "A", Region: "north"}},
		{"missing region", CreateInput{Name: "A", Email: "a@example.test"}},
		{"rate out of range", CreateInput{Name: "A", Email: "a@example.test", Region: "north", WholesaleRateBps: &badRate}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestRecordSaleDecrementsShelfAndAwardsPoints(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	reseller := seedTestReseller(t, conn, "Norte", 0)
	product := seedSaleProduct(t, conn, "Aurora Parka", 2500)
	seedShelf(t, conn, reseller.ID, product.ID, 10)

	sale, err := svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientName:    "Marta",
		Lines:         []SaleLineInput{{ProductID: product.ID, Qty: 2}},
		PaymentMethod: enums.PaymentMethodCash,
		PaymentType:   enums.PaymentTypeFull,
	})
	require.NoError(t, err)
	require.Equal(t, int64(5000), sale.TotalAmount)
	require.Equal(t, int64(5), sale.PointsAwarded)
	require.Equal(t, enums.PaymentStatusPaid, sale.PaymentStatus)
	require.Len(t, sale.Lines, 1)
	require.Equal(t, "Aurora Parka", sale.Lines[0].Name)

	var shelf models.ResellerStock
	require.NoError(t, conn.First(&shelf, "reseller_id = ? AND product_id = ?", reseller.ID, product.ID).Error)
	require.Equal(t, 8, shelf.Qty)

	var wallet models.Reseller
	require.NoError(t, conn.First(&wallet, "id = ?", reseller.ID).Error)
	require.Equal(t, int64(5), wallet.Points)
}

func TestRecordSaleMergesDuplicateLines(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	reseller := seedTestReseller(t, conn, "Norte", 0)
	product := seedSaleProduct(t, conn, "Aurora Parka", 1000)
	seedShelf(t, conn, reseller.ID, product.ID, 10)

	sale, err := svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientName: "Marta",
		Lines: []SaleLineInput{
			{ProductID: product.ID, Qty: 2},
			{ProductID: product.ID, Qty: 3},
		},
		PaymentMethod: enums.PaymentMethodCash,
		PaymentType:   enums.PaymentTypeFull,
	})
	require.NoError(t, err)
	require.Equal(t, int64(5000), sale.TotalAmount)
	require.Len(t, sale.Lines, 1)
	require.Equal(t, 5, sale.Lines[0].Qty)

	var shelf models.ResellerStock
	require.NoError(t, conn.First(&shelf, "reseller_id = ? AND product_id = ?", reseller.ID, product.ID).Error)
	require.Equal(t, 5, shelf.Qty)

	// conflicting discounts for one product are ambiguous
	_, err = svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientName: "Marta",
		Lines: []SaleLineInput{
			{ProductID: product.ID, Qty: 1},
			{ProductID: product.ID, Qty: 1, DiscountPercent: 10},
		},
		PaymentMethod: enums.PaymentMethodCash,
		PaymentType:   enums.PaymentTypeFull,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRecordSalePointsTruncateTowardZero(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	reseller := seedTestReseller(t, conn, "Norte", 0)
	product := seedSaleProduct(t, conn, "Helios Tee", 4999)
	seedShelf(t, conn, reseller.ID, product.ID, 5)

	sale, err := svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientName:    "Marta",
		Lines:         []SaleLineInput{{ProductID: product.ID, Qty: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		PaymentType:   enums.PaymentTypeFull,
	})
	require.NoError(t, err)
	require.Equal(t, int64(4), sale.PointsAwarded)
}

func TestRecordSaleInsufficientShelfRollsBack(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	reseller := seedTestReseller(t, conn, "Norte", 7)
	product := seedSaleProduct(t, conn, "Vela Scarf", 1500)
	seedShelf(t, conn, reseller.ID, product.ID, 1)

	_, err := svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientName:    "Marta",
		Lines:         []SaleLineInput{{ProductID: product.ID, Qty: 3}},
		PaymentMethod: enums.PaymentMethodCash,
		PaymentType:   enums.PaymentTypeFull,
	})
	require.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())

	var saleCount int64
	require.NoError(t, conn.Model(&models.Sale{}).Count(&saleCount).Error)
	require.Zero(t, saleCount)

	var shelf models.ResellerStock
	require.NoError(t, conn.First(&shelf, "reseller_id = ? AND product_id = ?", reseller.ID, product.ID).Error)
	require.Equal(t, 1, shelf.Qty)

	var wallet models.Reseller
	require.NoError(t, conn.First(&wallet, "id = ?", reseller.ID).Error)
	require.Equal(t, int64(7), wallet.Points)
}

func TestRecordSaleAccountMethodBooksClientDebt(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	reseller := seedTestReseller(t, conn, "Norte", 0)
	product := seedSaleProduct(t, conn, "Meridian Coat", 3000)
	seedShelf(t, conn, reseller.ID, product.ID, 5)

	client := &models.Client{ID: uuid.New(), Name: "Marta"}
	require.NoError(t, conn.Create(client).Error)

	sale, err := svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientID:      &client.ID,
		ClientName:    client.Name,
		Lines:         []SaleLineInput{{ProductID: product.ID, Qty: 1}},
		PaymentMethod: enums.PaymentMethodAccount,
		PaymentType:   enums.PaymentTypeFull,
	})
	require.NoError(t, err)
	require.Zero(t, sale.AmountPaid)
	require.Equal(t, int64(3000), sale.BalanceDue)
	require.Equal(t, enums.PaymentStatusPartial, sale.PaymentStatus)

	var stored models.Client
	require.NoError(t, conn.First(&stored, "id = ?", client.ID).Error)
	require.Equal(t, int64(3000), stored.AccountBalance)
	require.NotNil(t, stored.LastOrderAt)
}

func TestRecordSaleAccountMethodRequiresClient(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	reseller := seedTestReseller(t, conn, "Norte", 0)
	product := seedSaleProduct(t, conn, "Meridian Coat", 3000)
	seedShelf(t, conn, reseller.ID, product.ID, 5)

	_, err := svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientName:    "Walk-in",
		Lines:         []SaleLineInput{{ProductID: product.ID, Qty: 1}},
		PaymentMethod: enums.PaymentMethodAccount,
		PaymentType:   enums.PaymentTypeFull,
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestResetPeriodPointsRequiresConfirm(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	seedTestReseller(t, conn, "Norte", 42)

	_, err := svc.ResetPeriodPoints(ctx, false)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	affected, err := svc.ResetPeriodPoints(ctx, true)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	var wallet models.Reseller
	require.NoError(t, conn.First(&wallet).Error)
	require.Zero(t, wallet.Points)
}

func TestResetPreservesSalesHistory(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	reseller := seedTestReseller(t, conn, "Norte", 0)
	product := seedSaleProduct(t, conn, "Aurora Parka", 2000)
	seedShelf(t, conn, reseller.ID, product.ID, 5)

	_, err := svc.RecordSale(ctx, reseller.ID, SaleInput{
		ClientName:    "Marta",
		Lines:         []SaleLineInput{{ProductID: product.ID, Qty: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		PaymentType:   enums.PaymentTypeFull,
	})
	require.NoError(t, err)

	_, err = svc.ResetPeriodPoints(ctx, true)
	require.NoError(t, err)

	sales, err := svc.Sales(ctx, reseller.ID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	require.Equal(t, int64(2), sales[0].PointsAwarded)
}

func seedSaleAt(t *testing.T, conn *gorm.DB, resellerID uuid.UUID, total int64, soldAt time.Time) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Sale{
		ID:             uuid.New(),
		ResellerID:     resellerID,
		ClientName:     "cliente",
		SubtotalAmount: total,
		TotalAmount:    total,
		AmountPaid:     total,
		PaymentStatus:  enums.PaymentStatusPaid,
		PaymentMethod:  enums.PaymentMethodCash,
		PointsAwarded:  total / 1000,
		SoldAt:         soldAt,
	}).Error)
}

func TestRankCalendarPeriods(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	norte := seedTestReseller(t, conn, "Norte", 0)
	sur := seedTestReseller(t, conn, "Sur", 0)
	este := seedTestReseller(t, conn, "Este", 0)

	// Norte: one sale this month. Sur: one in January, same year.
	// Este: one last year, bigger than both.
	seedSaleAt(t, conn, norte.ID, 5000, now.AddDate(0, 0, -3))
	seedSaleAt(t, conn, sur.ID, 8000, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	seedSaleAt(t, conn, este.ID, 20000, time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC))

	month, err := svc.Rank(ctx, enums.RankingPeriodMonth, now)
	require.NoError(t, err)
	require.Equal(t, "Norte", month.Podium[0].Name)
	require.Equal(t, int64(5), month.Podium[0].Points)
	require.Zero(t, month.Podium[1].Points)

	year, err := svc.Rank(ctx, enums.RankingPeriodYear, now)
	require.NoError(t, err)
	require.Equal(t, "Sur", year.Podium[0].Name)
	require.Equal(t, int64(8), year.Podium[0].Points)
	require.Equal(t, "Norte", year.Podium[1].Name)

	all, err := svc.Rank(ctx, enums.RankingPeriodAll, now)
	require.NoError(t, err)
	require.Equal(t, "Este", all.Podium[0].Name)
	require.Equal(t, int64(20), all.Podium[0].Points)
	require.Equal(t, 1, all.Podium[0].SalesCount)
}

func TestRankPodiumAndTableSplit(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	totals := []int64{9000, 7000, 5000, 3000, 1000}
	for i, total := range totals {
		reseller := seedTestReseller(t, conn, fmt.Sprintf("R%d", i+1), 0)
		seedSaleAt(t, conn, reseller.ID, total, now)
	}

	ranking, err := svc.Rank(ctx, enums.RankingPeriodMonth, now)
	require.NoError(t, err)
	require.Len(t, ranking.Podium, 3)
	require.Len(t, ranking.Table, 2)
	require.Equal(t, 1, ranking.Podium[0].Rank)
	require.Equal(t, 4, ranking.Table[0].Rank)
	require.Equal(t, int64(3), ranking.Table[0].Points)
}

func TestRankTiesAreStable(t *testing.T) {
	conn := setupResellersTestDB(t)
	svc, _ := newResellersTestService(t, conn)
	ctx := context.Background()

	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	// both score 5 points; Alfa sorts before Beta by name and must stay first
	alfa := seedTestReseller(t, conn, "Alfa", 0)
	beta := seedTestReseller(t, conn, "Beta", 0)
	seedSaleAt(t, conn, alfa.ID, 5000, now)
	seedSaleAt(t, conn, beta.ID, 5000, now)

	ranking, err := svc.Rank(ctx, enums.RankingPeriodMonth, now)
	require.NoError(t, err)
	require.Equal(t, "Alfa", ranking.Podium[0].Name)
	require.Equal(t, "Beta", ranking.Podium[1].Name)
}
