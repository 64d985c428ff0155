package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brandhaus/storefront-backend/api/responses"
	"github.com/brandhaus/storefront-backend/api/validators"
	"github.com/brandhaus/storefront-backend/internal/catalog"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"param": name})
	}
	return id, nil
}

// ListProducts serves the public catalog. Anonymous callers only see active
// listings; the back office passes include_inactive=true.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.ListFilter{ActiveOnly: true}

		if raw := strings.TrimSpace(r.URL.Query().Get("brand")); raw != "" {
			brand, err := enums.ParseBrand(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid brand"))
				return
			}
			filter.Brand = &brand
		}
		if raw := validators.SanitizeString(r.URL.Query().Get("category"), 100); raw != "" {
			filter.Category = &raw
		}
		if r.URL.Query().Get("include_inactive") == "true" {
			filter.ActiveOnly = false
		}

		products, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Brand       string `json:"brand" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	PriceAmount int64  `json:"price_amount" validate:"min=0"`
	Stock       int    `json:"stock" validate:"min=0"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (p createProductRequest) toInput() (catalog.CreateInput, error) {
	brand, err := enums.ParseBrand(strings.TrimSpace(p.Brand))
	if err != nil {
		return catalog.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid brand")
	}
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return catalog.CreateInput{
		Brand:       brand,
		Category:    validators.SanitizeString(p.Category, 100),
		Name:        validators.SanitizeString(p.Name, 200),
		PriceAmount: p.PriceAmount,
		Stock:       p.Stock,
		IsActive:    active,
	}, nil
}

func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	PriceAmount *int64  `json:"price_amount,omitempty" validate:"omitempty,min=0"`
	Stock       *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, catalog.UpdateInput{
			Category:    payload.Category,
			Name:        payload.Name,
			PriceAmount: payload.PriceAmount,
			Stock:       payload.Stock,
			IsActive:    payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productID")
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

type restockProductRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

func RestockProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload restockProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Restock(r.Context(), id, payload.Qty); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
