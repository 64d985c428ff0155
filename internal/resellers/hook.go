package resellers

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
)

// RestockApplier moves goods from a delivered restock order onto the
// reseller's shelf. It runs inside the delivery transaction, so a failed
// shelf update rolls the status flip back with it.
type RestockApplier struct {
	repo *Repository
}

// NewRestockApplier builds the delivery hook.
func NewRestockApplier(repo *Repository) (*RestockApplier, error) {
	if repo == nil {
		return nil, errors.New("Resellers repo is required")
	}
	return &RestockApplier{repo: repo}, nil
}

// OrderDelivered increments the reseller's local stock for every line of a
// delivered restock order. Orders from other origins pass through untouched.
func (a *RestockApplier) OrderDelivered(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order.Origin != enums.OrderOriginReseller {
		return nil
	}
	repo := a.repo.WithTx(tx)
	for _, line := range order.Lines {
		if err := repo.IncrementLocalStock(ctx, order.BuyerID, line.ProductID, line.Qty); err != nil {
			return err
		}
	}
	return nil
}
