package controllers

import (
	"net/http"

	"github.com/chirpy-dev/chirpy-backend/api/responses"
	"github.com/chirpy-dev/chirpy-backend/api/validators"
	"github.com/chirpy-dev/chirpy-backend/internal/subscriptions"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
)

// RegisterDevice stores the browser push subscription for the caller.
func RegisterDevice(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var input subscriptions.RegisterInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Register(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"id":       sub.ID.String(),
			"endpoint": sub.Endpoint,
		})
	}
}

func UnregisterDevice(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var input subscriptions.UnregisterInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Unregister(r.Context(), userID, input.Endpoint); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteEmpty(w, http.StatusNoContent)
	}
}
