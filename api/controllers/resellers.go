package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/api/responses"
	"github.com/brandhaus/storefront-backend/api/validators"
	"github.com/brandhaus/storefront-backend/internal/resellers"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

func ListResellers(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetReseller(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reseller, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reseller)
	}
}

type createResellerRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"omitempty,min=8"`
	Region           string `json:"region" validate:"required,max=100"`
	WholesaleRateBps *int   `json:"wholesale_rate_bps,omitempty" validate:"omitempty,min=0,max=9999"`
}

func CreateReseller(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createResellerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reseller, err := svc.Create(r.Context(), resellers.CreateInput{
			Name:             validators.SanitizeString(payload.Name, 200),
			Email:            strings.ToLower(strings.TrimSpace(payload.Email)),
			Password:         payload.Password,
			Region:           validators.SanitizeString(payload.Region, 100),
			WholesaleRateBps: payload.WholesaleRateBps,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reseller)
	}
}

type updateResellerRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Region           *string `json:"region,omitempty" validate:"omitempty,max=100"`
	WholesaleRateBps *int    `json:"wholesale_rate_bps,omitempty" validate:"omitempty,min=0,max=9999"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

func UpdateReseller(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateResellerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reseller, err := svc.Update(r.Context(), id, resellers.UpdateInput{
			Name:             payload.Name,
			Region:           payload.Region,
			WholesaleRateBps: payload.WholesaleRateBps,
			IsActive:         payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reseller)
	}
}

func DeleteReseller(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetResellerStock(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stock, err := svc.Stock(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stock)
	}
}

type saleLineRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	Qty             int    `json:"qty" validate:"required,min=1"`
	DiscountPercent int    `json:"discount_percent" validate:"omitempty,min=0,max=100"`
}

type recordSaleRequest struct {
	ClientID      *string           `json:"client_id,omitempty" validate:"omitempty,uuid"`
	ClientName    string            `json:"client_name" validate:"required,max=200"`
	Lines         []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
	PaymentType   string            `json:"payment_type" validate:"required"`
}

func RecordResellerSale(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resellerID, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload recordSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}
		payType, err := enums.ParsePaymentType(strings.TrimSpace(payload.PaymentType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
			return
		}

		input := resellers.SaleInput{
			ClientName:    validators.SanitizeString(payload.ClientName, 200),
			PaymentMethod: method,
			PaymentType:   payType,
		}
		if payload.ClientID != nil {
			clientID, parseErr := uuid.Parse(*payload.ClientID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid client id"))
				return
			}
			input.ClientID = &clientID
		}
		for _, line := range payload.Lines {
			productID, parseErr := uuid.Parse(line.ProductID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product id"))
				return
			}
			input.Lines = append(input.Lines, resellers.SaleLineInput{
				ProductID:       productID,
				Qty:             line.Qty,
				DiscountPercent: line.DiscountPercent,
			})
		}

		sale, err := svc.RecordSale(r.Context(), resellerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func ListResellerSales(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resellerID, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sales, err := svc.Sales(r.Context(), resellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sales)
	}
}

func ResellerRanking(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("period"))
		if raw == "" {
			raw = string(enums.RankingPeriodMonth)
		}
		period, err := enums.ParseRankingPeriod(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid period"))
			return
		}
		ranking, err := svc.Rank(r.Context(), period, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ranking)
	}
}

type resetPointsRequest struct {
	Confirm bool `json:"confirm"`
}

func ResetResellerPoints(svc resellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload resetPointsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		affected, err := svc.ResetPeriodPoints(r.Context(), payload.Confirm)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"wallets_reset": affected})
	}
}
