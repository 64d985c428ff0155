package controllers

import (
	"net/http"
	"strings"

	"github.com/brandhaus/storefront-backend/api/responses"
	"github.com/brandhaus/storefront-backend/api/validators"
	"github.com/brandhaus/storefront-backend/internal/clients"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

func ListClients(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

type createClientRequest struct {
	Name                   string `json:"name" validate:"required,max=200"`
	Phone                  string `json:"phone" validate:"omitempty,max=50"`
	Email                  string `json:"email" validate:"omitempty,email"`
	PreferredPaymentMethod string `json:"preferred_payment_method" validate:"omitempty"`
}

func CreateClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createClientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := clients.CreateInput{
			Name:  validators.SanitizeString(payload.Name, 200),
			Phone: validators.SanitizeString(payload.Phone, 50),
			Email: strings.ToLower(strings.TrimSpace(payload.Email)),
		}
		if raw := strings.TrimSpace(payload.PreferredPaymentMethod); raw != "" {
			method, err := enums.ParsePaymentMethod(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
				return
			}
			input.PreferredPaymentMethod = method
		}
		client, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

type updateClientRequest struct {
	Name                   *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone                  *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email                  *string `json:"email,omitempty" validate:"omitempty,email"`
	PreferredPaymentMethod *string `json:"preferred_payment_method,omitempty"`
}

func UpdateClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateClientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := clients.UpdateInput{
			Name:  payload.Name,
			Phone: payload.Phone,
			Email: payload.Email,
		}
		if payload.PreferredPaymentMethod != nil {
			method, parseErr := enums.ParsePaymentMethod(strings.TrimSpace(*payload.PreferredPaymentMethod))
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment method"))
				return
			}
			input.PreferredPaymentMethod = &method
		}
		client, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func DeleteClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "clientID")
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

type recordPaymentRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

// RecordClientPayment applies a payment against the client's account book.
func RecordClientPayment(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload recordPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.RecordPayment(r.Context(), id, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}
