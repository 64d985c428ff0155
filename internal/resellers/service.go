package resellers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/internal/clients"
	"github.com/brandhaus/storefront-backend/internal/pricing"
	"github.com/brandhaus/storefront-backend/pkg/config"
	"github.com/brandhaus/storefront-backend/pkg/db"
	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
	"github.com/brandhaus/storefront-backend/pkg/security"
)

// Service exposes reseller account, ledger and ranking operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Reseller, error)
	List(ctx context.Context) ([]models.Reseller, error)
	Create(ctx context.Context, input CreateInput) (*models.Reseller, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Reseller, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Authenticate(ctx context.Context, email, password string) (*models.Reseller, error)
	Stock(ctx context.Context, id uuid.UUID) ([]models.ResellerStock, error)
	RecordSale(ctx context.Context, resellerID uuid.UUID, input SaleInput) (*models.Sale, error)
	Sales(ctx context.Context, resellerID uuid.UUID) ([]models.Sale, error)
	ResetPeriodPoints(ctx context.Context, confirm bool) (int64, error)
	Rank(ctx context.Context, period enums.RankingPeriod, now time.Time) (*Ranking, error)
}

// CreateInput carries a new reseller account.
type CreateInput struct {
	Name             string
	Email            string
	Password         string
	Region           string
	WholesaleRateBps *int
}

// UpdateInput mutates account fields; nil leaves a field untouched.
type UpdateInput struct {
	Name             *string
	Region           *string
	WholesaleRateBps *int
	IsActive         *bool
}

// SaleLineInput is one line of a reseller-to-client sale.
type SaleLineInput struct {
	ProductID       uuid.UUID
	Qty             int
	DiscountPercent int
}

// SaleInput is a sale recorded out of the reseller's local stock. ClientID
// is optional; walk-in buyers only leave a name.
type SaleInput struct {
	ClientID      *uuid.UUID
	ClientName    string
	Lines         []SaleLineInput
	PaymentMethod enums.PaymentMethod
	PaymentType   enums.PaymentType
	SoldAt        *time.Time
}

// RankingEntry is one reseller's score within a period.
type RankingEntry struct {
	Rank       int       `json:"rank"`
	ResellerID uuid.UUID `json:"reseller_id"`
	Name       string    `json:"name"`
	Region     string    `json:"region"`
	SalesCount int       `json:"sales_count"`
	Points     int64     `json:"points"`
}

// Ranking splits the leaderboard into the top-3 podium and the remainder
// table, which starts at rank 4.
type Ranking struct {
	Period enums.RankingPeriod `json:"period"`
	Podium []RankingEntry      `json:"podium"`
	Table  []RankingEntry      `json:"table"`
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx            txRunner
	repo          *Repository
	products      productLoader
	clientsRepo   *clients.Repository
	logg          *logger.Logger
	pwCfg         config.PasswordConfig
	pointsDivisor int64
	now           func() time.Time
}

// NewService builds the resellers service.
func NewService(
	tx txRunner,
	repo *Repository,
	products productLoader,
	clientsRepo *clients.Repository,
	pwCfg config.PasswordConfig,
	pointsDivisor int64,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if repo == nil {
		return nil, errors.New("Resellers repo is required")
	}
	if products == nil {
		return nil, errors.New("product loader is required")
	}
	if clientsRepo == nil {
		return nil, errors.New("clients repo is required")
	}
	if pointsDivisor <= 0 {
		return nil, errors.New("points divisor must be positive")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{
		tx:            tx,
		repo:          repo,
		products:      products,
		clientsRepo:   clientsRepo,
		logg:          logg,
		pwCfg:         pwCfg,
		pointsDivisor: pointsDivisor,
		now:           time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Reseller, error) {
	reseller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reseller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reseller")
	}
	return reseller, nil
}

func (s *service) List(ctx context.Context) ([]models.Reseller, error) {
	resellers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list resellers")
	}
	return resellers, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Reseller, error) {
	if input.Name == "" || input.Email == "" || input.Region == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and region are required")
	}
	if input.WholesaleRateBps != nil {
		if r := *input.WholesaleRateBps; r < 0 || r >= 10_000 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wholesale rate must be at least 0 and below 10000 basis points")
		}
	}

	password := input.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(16)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
	}
	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	reseller := &models.Reseller{
		Name:             input.Name,
		Email:            input.Email,
		PasswordHash:     hash,
		Region:           input.Region,
		WholesaleRateBps: input.WholesaleRateBps,
		IsActive:         true,
	}
	created, err := s.repo.Create(ctx, reseller)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_resellers_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reseller")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Reseller, error) {
	reseller, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		reseller.Name = *input.Name
	}
	if input.Region != nil {
		reseller.Region = *input.Region
	}
	if input.WholesaleRateBps != nil {
		if r := *input.WholesaleRateBps; r < 0 || r >= 10_000 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wholesale rate must be at least 0 and below 10000 basis points")
		}
		reseller.WholesaleRateBps = input.WholesaleRateBps
	}
	if input.IsActive != nil {
		reseller.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, reseller)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reseller")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reseller")
	}
	return nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*models.Reseller, error) {
	reseller, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reseller")
	}
	ok, err := security.VerifyPassword(password, reseller.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !reseller.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}
	return reseller, nil
}

func (s *service) Stock(ctx context.Context, id uuid.UUID) ([]models.ResellerStock, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	stock, err := s.repo.ListStock(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reseller stock")
	}
	return stock, nil
}

// RecordSale appends a sale out of the reseller's local stock. Sale insert,
// shelf decrement and points award are one transaction; none of the three is
// ever observable without the others.
func (s *service) RecordSale(ctx context.Context, resellerID uuid.UUID, input SaleInput) (*models.Sale, error) {
	if _, err := s.Get(ctx, resellerID); err != nil {
		return nil, err
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale must have at least one line")
	}
	if input.ClientName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if !input.PaymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type")
	}
	if input.PaymentMethod == enums.PaymentMethodAccount && input.ClientID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account payment requires a registered client")
	}

	merged, err := mergeSaleLines(input.Lines)
	if err != nil {
		return nil, err
	}
	input.Lines = merged

	soldAt := s.now()
	if input.SoldAt != nil {
		soldAt = *input.SoldAt
	}

	products := make([]*models.Product, 0, len(input.Lines))
	lines := make([]pricing.Line, 0, len(input.Lines))
	for _, line := range input.Lines {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		products = append(products, product)
		lines = append(lines, pricing.Line{
			UnitPriceAmount: product.PriceAmount,
			Qty:             line.Qty,
			DiscountPercent: line.DiscountPercent,
		})
	}

	result, err := pricing.Quote(pricing.Input{Lines: lines, PaymentType: input.PaymentType})
	if err != nil {
		return nil, err
	}

	sale := s.buildSale(resellerID, input, products, result, soldAt)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for i, line := range input.Lines {
			ok, err := repo.DecrementLocalStock(ctx, resellerID, line.ProductID, line.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement local stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("not enough local stock for %s", products[i].Name)).
					WithDetails(map[string]any{"productId": line.ProductID, "requestedQty": line.Qty})
			}
		}

		if _, err := repo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}

		if sale.PointsAwarded > 0 {
			if err := repo.AddPoints(ctx, resellerID, sale.PointsAwarded); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "award points")
			}
		}

		if input.ClientID != nil {
			clientsRepo := s.clientsRepo.WithTx(tx)
			if input.PaymentMethod == enums.PaymentMethodAccount {
				if err := clientsRepo.AdjustBalance(ctx, *input.ClientID, sale.TotalAmount); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "charge client account")
				}
			}
			if err := clientsRepo.TouchLastOrder(ctx, *input.ClientID, soldAt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp client last order")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"resellerID":    resellerID.String(),
		"saleID":        sale.ID.String(),
		"pointsAwarded": sale.PointsAwarded,
	}), "sale recorded")
	return sale, nil
}

// mergeSaleLines folds duplicate product lines into one, summing quantities.
// Conflicting per-line discounts for one product are rejected.
func mergeSaleLines(lines []SaleLineInput) ([]SaleLineInput, error) {
	merged := make([]SaleLineInput, 0, len(lines))
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

func (s *service) buildSale(resellerID uuid.UUID, input SaleInput, products []*models.Product, result *pricing.Result, soldAt time.Time) *models.Sale {
	sale := &models.Sale{
		ID:             uuid.New(),
		ResellerID:     resellerID,
		ClientID:       input.ClientID,
		ClientName:     input.ClientName,
		SubtotalAmount: result.SubtotalAmount,
		TotalAmount:    result.TotalAmount,
		PaymentMethod:  input.PaymentMethod,
		PointsAwarded:  result.TotalAmount / s.pointsDivisor,
		SoldAt:         soldAt,
	}

	// the deferred account method collects nothing up front
	if input.PaymentMethod == enums.PaymentMethodAccount {
		sale.AmountPaid = 0
		sale.BalanceDue = sale.TotalAmount
	} else {
		sale.AmountPaid = result.PayNowAmount
		sale.BalanceDue = result.PayLaterAmount
	}
	sale.PaymentStatus = enums.PaymentStatusPartial
	if sale.BalanceDue <= 0 {
		sale.PaymentStatus = enums.PaymentStatusPaid
	}

	sale.Lines = make([]models.SaleLine, 0, len(result.Lines))
	for i, line := range result.Lines {
		sale.Lines = append(sale.Lines, models.SaleLine{
			ID:              uuid.New(),
			SaleID:          sale.ID,
			ProductID:       products[i].ID,
			Name:            products[i].Name,
			UnitPriceAmount: line.UnitPriceAmount,
			DiscountPercent: line.DiscountPercent,
			EffectiveAmount: line.EffectiveAmount,
			Qty:             line.Qty,
			LineTotalAmount: line.LineTotalAmount,
		})
	}
	return sale
}

func (s *service) Sales(ctx context.Context, resellerID uuid.UUID) ([]models.Sale, error) {
	if _, err := s.Get(ctx, resellerID); err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSales(ctx, resellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return sales, nil
}

// ResetPeriodPoints zeroes every wallet. The confirm flag is the explicit
// acknowledgement that the operation is irreversible.
func (s *service) ResetPeriodPoints(ctx context.Context, confirm bool) (int64, error) {
	if !confirm {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "points reset requires explicit confirmation")
	}
	affected, err := s.repo.ResetAllPoints(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset points")
	}
	s.logg.Info(s.logg.WithField(ctx, "walletsReset", affected), "period points reset")
	return affected, nil
}

// Rank builds the leaderboard for the period. Scores are recomputed from the
// sales history, so a wallet reset never distorts past rankings.
func (s *service) Rank(ctx context.Context, period enums.RankingPeriod, now time.Time) (*Ranking, error) {
	if !period.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ranking period")
	}

	resellers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list resellers")
	}

	sales, err := s.repo.ListSalesSince(ctx, rankingCutoff(period, now))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	type score struct {
		count  int
		points int64
	}
	scores := make(map[uuid.UUID]score, len(resellers))
	for _, sale := range sales {
		if !saleInPeriod(sale.SoldAt, period, now) {
			continue
		}
		entry := scores[sale.ResellerID]
		entry.count++
		entry.points += sale.TotalAmount / s.pointsDivisor
		scores[sale.ResellerID] = entry
	}

	entries := make([]RankingEntry, 0, len(resellers))
	for _, reseller := range resellers {
		sc := scores[reseller.ID]
		entries = append(entries, RankingEntry{
			ResellerID: reseller.ID,
			Name:       reseller.Name,
			Region:     reseller.Region,
			SalesCount: sc.count,
			Points:     sc.points,
		})
	}
	// stable: ties keep their original relative order
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	ranking := &Ranking{Period: period}
	if len(entries) <= 3 {
		ranking.Podium = entries
		ranking.Table = []RankingEntry{}
	} else {
		ranking.Podium = entries[:3]
		ranking.Table = entries[3:]
	}
	return ranking, nil
}

// rankingCutoff bounds the sales query; the exact calendar filter happens in
// saleInPeriod.
func rankingCutoff(period enums.RankingPeriod, now time.Time) time.Time {
	switch period {
	case enums.RankingPeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case enums.RankingPeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

func saleInPeriod(soldAt time.Time, period enums.RankingPeriod, now time.Time) bool {
	switch period {
	case enums.RankingPeriodMonth:
		return soldAt.Year() == now.Year() && soldAt.Month() == now.Month()
	case enums.RankingPeriodYear:
		return soldAt.Year() == now.Year()
	default:
		return true
	}
}
