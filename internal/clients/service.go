package clients

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

// Service exposes admin client-book operations. The running account balance
// only moves through the deferred account payment flow and through recorded
// payments here.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Create(ctx context.Context, input CreateInput) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordPayment(ctx context.Context, id uuid.UUID, amount int64) (*models.Client, error)
}

// CreateInput carries a new client-book entry.
type CreateInput struct {
	Name                   string
	Phone                  string
	Email                  string
	PreferredPaymentMethod enums.PaymentMethod
}

// UpdateInput mutates contact fields; nil leaves a field untouched.
type UpdateInput struct {
	Name                   *string
	Phone                  *string
	Email                  *string
	PreferredPaymentMethod *enums.PaymentMethod
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService builds the clients service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("clients repo is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}

func (s *service) List(ctx context.Context) ([]models.Client, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	return clients, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Client, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}
	method := input.PreferredPaymentMethod
	if method == "" {
		method = enums.PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	client := &models.Client{
		Name:                   input.Name,
		Phone:                  input.Phone,
		Email:                  input.Email,
		PreferredPaymentMethod: method,
	}
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
		}
		client.Name = *input.Name
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.PreferredPaymentMethod != nil {
		if !input.PreferredPaymentMethod.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
		}
		client.PreferredPaymentMethod = *input.PreferredPaymentMethod
	}

	updated, err := s.repo.Update(ctx, client)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
	}
	return nil
}

// RecordPayment reduces the client's running debt by amount. Overpaying
// flips the balance negative, which stands for store credit.
func (s *service) RecordPayment(ctx context.Context, id uuid.UUID, amount int64) (*models.Client, error) {
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.AdjustBalance(ctx, id, -amount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record client payment")
	}
	return s.Get(ctx, id)
}
