package controllers

import (
	"net/http"
	"strings"

	"github.com/brandhaus/storefront-backend/api/middleware"
	"github.com/brandhaus/storefront-backend/api/responses"
	"github.com/brandhaus/storefront-backend/api/validators"
	"github.com/brandhaus/storefront-backend/internal/messages"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

// senderFromContext maps the actor role onto the thread party.
func senderFromContext(r *http.Request) (enums.MessageSender, error) {
	switch middleware.RoleFromContext(r.Context()) {
	case middleware.RoleAdmin:
		return enums.MessageSenderAdmin, nil
	case middleware.RoleReseller:
		return enums.MessageSenderReseller, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
}

type sendMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

func SendMessage(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resellerID, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sender, err := senderFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload sendMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message, err := svc.Send(r.Context(), resellerID, sender, strings.TrimSpace(payload.Body))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

func GetThread(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resellerID, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reader, err := senderFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		thread, err := svc.Thread(r.Context(), resellerID, reader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, thread)
	}
}

func GetUnreadCount(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resellerID, err := parseIDParam(r, "resellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reader, err := senderFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := svc.UnreadCount(r.Context(), resellerID, reader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
