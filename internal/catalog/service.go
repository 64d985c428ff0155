package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

// Service exposes catalog operations. Stock only ever decreases through the
// checkout paths; the admin mutators here set absolute values.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restock(ctx context.Context, id uuid.UUID, qty int) error
}

// CreateInput carries an admin-authored catalog listing.
type CreateInput struct {
	Brand       enums.Brand
	Category    string
	Name        string
	PriceAmount int64
	Stock       int
	IsActive    bool
}

// UpdateInput mutates listing fields; nil leaves a field untouched.
type UpdateInput struct {
	Category    *string
	Name        *string
	PriceAmount *int64
	Stock       *int
	IsActive    *bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx   txRunner
	repo *Repository
	logg *logger.Logger
}

// NewService builds the catalog service.
func NewService(tx txRunner, repo *Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if repo == nil {
		return nil, errors.New("product repo is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{tx: tx, repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if err := validateListing(input.Brand, input.Name, input.PriceAmount, input.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Brand:       input.Brand,
		Category:    input.Category,
		Name:        input.Name,
		PriceAmount: input.PriceAmount,
		Stock:       input.Stock,
		IsActive:    input.IsActive,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.logg.Info(s.logg.WithField(ctx, "productID", created.ID.String()), "product created")
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.PriceAmount != nil {
		product.PriceAmount = *input.PriceAmount
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := validateListing(product.Brand, product.Name, product.PriceAmount, product.Stock); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

// Delete removes a catalog listing. Blocked while any reseller still holds
// local stock of the product or any pending/shipped order references it; the
// guards and the delete run in one transaction so a concurrent restock cannot
// slip between them.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		holders, err := repo.CountResellerHoldings(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count reseller holdings")
		}
		if holders > 0 {
			return pkgerrors.New(pkgerrors.CodeDeletionBlocked,
				fmt.Sprintf("product is held by %d reseller(s) with local stock", holders)).
				WithDetails(map[string]any{"blockingResellers": holders})
		}

		open, err := repo.CountOpenOrderReferences(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open order references")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeDeletionBlocked,
				"product is referenced by pending or shipped orders").
				WithDetails(map[string]any{"blockingOrderLines": open})
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return nil
	})
}

func (s *service) Restock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be at least 1")
	}
	if err := s.repo.IncrementStock(ctx, id, qty); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock product")
	}
	return nil
}

func validateListing(brand enums.Brand, name string, price int64, stock int) error {
	if !brand.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	return nil
}
