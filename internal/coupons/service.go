package coupons

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db"
	"github.com/brandhaus/storefront-backend/pkg/db/models"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

// Service exposes coupon registry operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Coupon, error)
	Lookup(ctx context.Context, code string) (*models.Coupon, error)
}

// CreateInput carries the admin-supplied coupon definition.
type CreateInput struct {
	Code            string
	DiscountPercent int
	IsActive        bool
}

// UpdateInput mutates percent and active flag. The code itself is immutable
// once issued; customers may already hold it.
type UpdateInput struct {
	DiscountPercent *int
	IsActive        *bool
}

type couponRepo interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type couponCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CouponKey(code string) string
}

type service struct {
	repo     couponRepo
	cache    couponCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService builds the coupon service. The cache is optional; passing nil
// disables the read-through layer.
func NewService(repo couponRepo, cache couponCache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("coupon repo is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, cache: cache, cacheTTL: cacheTTL, logg: logg}, nil
}

// Canonicalize normalizes user-entered coupon codes: trim, uppercase.
func Canonicalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup resolves a redeemable coupon by code. Unknown and inactive codes
// both surface CodeInvalidCoupon; the caller cannot distinguish them.
func (s *service) Lookup(ctx context.Context, code string) (*models.Coupon, error) {
	canonical := Canonicalize(code)
	if canonical == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon code is empty")
	}

	if cached := s.fromCache(ctx, canonical); cached != nil {
		if !cached.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon is not active")
		}
		return cached, nil
	}

	coupon, err := s.repo.FindByCode(ctx, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	s.toCache(ctx, coupon)

	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon is not active")
	}
	return coupon, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	canonical := Canonicalize(input.Code)
	if canonical == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if input.DiscountPercent < 1 || input.DiscountPercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 1 and 100")
	}

	coupon := &models.Coupon{
		Code:            canonical,
		DiscountPercent: input.DiscountPercent,
		IsActive:        input.IsActive,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_coupons_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	s.invalidate(ctx, canonical)
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if input.DiscountPercent != nil {
		if *input.DiscountPercent < 1 || *input.DiscountPercent > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 1 and 100")
		}
		coupon.DiscountPercent = *input.DiscountPercent
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	s.invalidate(ctx, coupon.Code)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	s.invalidate(ctx, coupon.Code)
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

// fromCache returns nil on any miss or cache failure; a broken cache must
// never fail a lookup.
func (s *service) fromCache(ctx context.Context, canonical string) *models.Coupon {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.CouponKey(canonical))
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logg.Error(s.logg.WithField(ctx, "couponCode", canonical), "coupon cache read failed", err)
		}
		return nil
	}
	var coupon models.Coupon
	if err := json.Unmarshal([]byte(raw), &coupon); err != nil {
		return nil
	}
	return &coupon
}

func (s *service) toCache(ctx context.Context, coupon *models.Coupon) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(coupon)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CouponKey(coupon.Code), string(raw), s.cacheTTL); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "couponCode", coupon.Code), "coupon cache write failed", err)
	}
}

func (s *service) invalidate(ctx context.Context, canonical string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CouponKey(canonical)); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "couponCode", canonical), "coupon cache invalidation failed", err)
	}
}
