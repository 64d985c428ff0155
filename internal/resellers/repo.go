package resellers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
)

// Repository persists reseller accounts, their local stock ledger and sales.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the reseller row without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reseller, error) {
	var reseller models.Reseller
	if err := r.db.WithContext(ctx).First(&reseller, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reseller, nil
}

// FindByEmail loads a reseller by login email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Reseller, error) {
	var reseller models.Reseller
	if err := r.db.WithContext(ctx).First(&reseller, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &reseller, nil
}

// List returns all resellers ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Reseller, error) {
	var resellers []models.Reseller
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&resellers).Error; err != nil {
		return nil, err
	}
	return resellers, nil
}

// Create inserts a new reseller row.
func (r *Repository) Create(ctx context.Context, reseller *models.Reseller) (*models.Reseller, error) {
	if err := r.db.WithContext(ctx).Create(reseller).Error; err != nil {
		return nil, err
	}
	return reseller, nil
}

// Update saves an existing reseller row.
func (r *Repository) Update(ctx context.Context, reseller *models.Reseller) (*models.Reseller, error) {
	if err := r.db.WithContext(ctx).Omit("Stock").Save(reseller).Error; err != nil {
		return nil, err
	}
	return reseller, nil
}

// Delete removes a reseller row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Reseller{}, "id = ?", id).Error
}

// ListStock returns the reseller's shelf ledger.
func (r *Repository) ListStock(ctx context.Context, resellerID uuid.UUID) ([]models.ResellerStock, error) {
	var stock []models.ResellerStock
	if err := r.db.WithContext(ctx).
		Where("reseller_id = ?", resellerID).
		Find(&stock).Error; err != nil {
		return nil, err
	}
	return stock, nil
}

// DecrementLocalStock atomically takes qty units off the reseller's shelf.
// Zero rows affected means the shelf does not hold that many units.
func (r *Repository) DecrementLocalStock(ctx context.Context, resellerID, productID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ResellerStock{}).
		Where("reseller_id = ? AND product_id = ? AND qty >= ?", resellerID, productID, qty).
		UpdateColumn("qty", gorm.Expr("qty - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementLocalStock adds qty units to the reseller's shelf, creating the
// ledger row on first delivery.
func (r *Repository) IncrementLocalStock(ctx context.Context, resellerID, productID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ResellerStock{}).
		Where("reseller_id = ? AND product_id = ?", resellerID, productID).
		UpdateColumn("qty", gorm.Expr("qty + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&models.ResellerStock{
		ResellerID: resellerID,
		ProductID:  productID,
		Qty:        qty,
	}).Error
}

// AddPoints moves the reseller's wallet by delta.
func (r *Repository) AddPoints(ctx context.Context, resellerID uuid.UUID, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reseller{}).
		Where("id = ?", resellerID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResetAllPoints zeroes every wallet. Sales rows are untouched.
func (r *Repository) ResetAllPoints(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reseller{}).
		Where("points <> 0").
		UpdateColumn("points", 0)
	return result.RowsAffected, result.Error
}

// CreateSale inserts the sale with its lines.
func (r *Repository) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// ListSales returns a reseller's sales, newest first, lines included.
func (r *Repository) ListSales(ctx context.Context, resellerID uuid.UUID) ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("reseller_id = ?", resellerID).
		Order("sold_at DESC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// ListSalesSince returns every sale sold at or after the cutoff; a zero
// cutoff returns the complete history. Used by the ranking aggregation.
func (r *Repository) ListSalesSince(ctx context.Context, cutoff time.Time) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if !cutoff.IsZero() {
		query = query.Where("sold_at >= ?", cutoff)
	}
	var sales []models.Sale
	if err := query.Order("sold_at ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
