package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

// allowedTransitions is the whole state machine: pending can ship or cancel,
// shipped can only deliver. Delivered and cancelled are terminal.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped: {enums.OrderStatusDelivered},
}

// Service exposes order settlement and lifecycle operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	SettleBalance(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DeliveredHook runs inside the delivery transaction, after the status flip
// is saved. Restock orders use it to move goods onto the reseller's shelf.
type DeliveredHook interface {
	OrderDelivered(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type service struct {
	tx   txRunner
	repo *Repository
	hook DeliveredHook
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the orders service. The hook is optional.
func NewService(tx txRunner, repo *Repository, hook DeliveredHook, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if repo == nil {
		return nil, errors.New("orders repo is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{tx: tx, repo: repo, hook: hook, logg: logg, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// AdvanceStatus moves the order one step through the lifecycle. Skips and
// backward moves are rejected with CodeStateConflict.
func (s *service) AdvanceStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !transitionAllowed(loaded.Status, next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", loaded.Status, next))
		}

		stamp := s.now()
		loaded.Status = next
		switch next {
		case enums.OrderStatusShipped:
			loaded.ShippedAt = &stamp
		case enums.OrderStatusDelivered:
			loaded.DeliveredAt = &stamp
		case enums.OrderStatusCancelled:
			loaded.CancelledAt = &stamp
		}

		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order status")
		}

		if next == enums.OrderStatusDelivered && s.hook != nil {
			if err := s.hook.OrderDelivered(ctx, tx, loaded); err != nil {
				return err
			}
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "status", order.Status.String()), "order status advanced")
	return order, nil
}

// SettleBalance clears the outstanding balance in one step. Calling it on an
// already settled order is a no-op, never a double count.
func (s *service) SettleBalance(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if loaded.BalanceDue <= 0 {
			order = loaded
			return nil
		}

		loaded.AmountPaid = loaded.TotalAmount
		loaded.BalanceDue = 0
		loaded.PaymentStatus = enums.PaymentStatusPaid
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle order balance")
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes the order record. Stock decremented at checkout stays
// decremented.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
