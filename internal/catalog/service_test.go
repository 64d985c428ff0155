package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newCatalogTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := setupCatalogTestDB(t)
	svc, err := NewService(&testTxRunner{db: conn}, NewRepository(conn), logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, conn
}

func TestServiceCreateValidatesListing(t *testing.T) {
	svc, _ := newCatalogTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"unknown brand", CreateInput{Brand: enums.Brand("acme"), Name: "X", PriceAmount: 100}},
		{"empty name", CreateInput{Brand: enums.BrandAurora, PriceAmount: 100}},
		{"negative price", CreateInput{Brand: enums.BrandAurora, Name: "X", PriceAmount: -1}},
		{"negative stock", CreateInput{Brand: enums.BrandAurora, Name: "X", PriceAmount: 1, Stock: -3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}

	created, err := svc.Create(ctx, CreateInput{
		Brand:       enums.BrandVela,
		Category:    "accessories",
		Name:        "Belt",
		PriceAmount: 2500,
		Stock:       10,
		IsActive:    true,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
}

func TestServiceDeleteBlockedByResellerStock(t *testing.T) {
	svc, conn := newCatalogTestService(t)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 5)

	require.NoError(t, conn.Create(&models.ResellerStock{
		ResellerID: uuid.New(),
		ProductID:  product.ID,
		Qty:        2,
	}).Error)

	err := svc.Delete(ctx, product.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDeletionBlocked, typed.Code())

	// catalog unchanged
	_, err = svc.Get(ctx, product.ID)
	require.NoError(t, err)
}

func TestServiceDeleteBlockedByOpenOrder(t *testing.T) {
	svc, conn := newCatalogTestService(t)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 5)
	mustCreateTestOrder(t, conn, product.ID, enums.OrderStatusPending)

	err := svc.Delete(ctx, product.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDeletionBlocked, typed.Code())
}

func TestServiceDeleteSucceedsWithoutReferences(t *testing.T) {
	svc, conn := newCatalogTestService(t)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 5)
	// terminal orders do not block deletion
	mustCreateTestOrder(t, conn, product.ID, enums.OrderStatusDelivered)

	require.NoError(t, svc.Delete(ctx, product.ID))

	_, err := svc.Get(ctx, product.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceRestock(t *testing.T) {
	svc, conn := newCatalogTestService(t)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 1)

	require.NoError(t, svc.Restock(ctx, product.ID, 4))

	reloaded, err := svc.Get(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 5, reloaded.Stock)

	err = svc.Restock(ctx, product.ID, 0)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	err = svc.Restock(ctx, uuid.New(), 1)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceUpdatePartialFields(t *testing.T) {
	svc, conn := newCatalogTestService(t)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 5)

	newPrice := int64(1999)
	updated, err := svc.Update(ctx, product.ID, UpdateInput{PriceAmount: &newPrice})
	require.NoError(t, err)
	require.EqualValues(t, 1999, updated.PriceAmount)
	require.Equal(t, product.Name, updated.Name)

	badPrice := int64(-5)
	_, err = svc.Update(ctx, product.ID, UpdateInput{PriceAmount: &badPrice})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
