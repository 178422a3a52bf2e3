package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

type SessionHandler struct {
	Grants *service.SessionGrantor
}

// ServeHTTP parks an authenticated session behind a one-time handle.
//
//	@Summary		Grant Delegation Session Endpoint
//	@Description	Parks an authenticated session behind a one-time handle that a later issue call
//	@Description	redeems. Guarded by a deployment-level grant token held by the login collaborator,
//	@Description	not end users. Disabled entirely when no grant token is configured
//	@Tags			LPR
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-Grant-Token	header		string					true	"Grant token for authorization"
//	@Param			request					body		lprsdk.SessionRequest	true	"Session to park"
//	@Success		201						{object}	lprsdk.SessionResponse	"One-time session handle"
//	@Failure		400						{object}	lprsdk.ErrorResponse	"Invalid request body"
//	@Failure		401						{object}	lprsdk.ErrorResponse	"Missing or invalid grant token"
//	@Failure		404						{object}	lprsdk.ErrorResponse	"Session granting not enabled (no token configured)"
//	@Failure		503						{object}	lprsdk.ErrorResponse	"Session store unavailable"
//	@Router			/v1/lpr/session [post].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Check if enabled
	if h.Grants.Token == "" {
		lprsdk.NewAPIError(http.StatusNotFound, "not_found", "session granting is not enabled").WriteError(w)
		return
	}

	// 2. Require grant token header
	token := r.Header.Get("X-Session-Grant-Token")
	if token == "" {
		lprsdk.NewAPIError(http.StatusUnauthorized, "unauthorized",
			"grant token is required in X-Session-Grant-Token header").WriteError(w)
		return
	}

	// 3. Parse request body
	var req lprsdk.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		lprsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	// 4. Grant
	handle, expiresAt, err := h.Grants.Grant(r.Context(), token, req.UserID, req.Service)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGrantUnauthorized):
			lprsdk.NewAPIError(http.StatusUnauthorized, "unauthorized", "invalid grant token").WriteError(w)
		case errors.Is(err, service.ErrMissingUser), errors.Is(err, service.ErrMissingService):
			lprsdk.NewAPIError(http.StatusBadRequest, lprsdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
		default:
			slogx.FromContext(r.Context()).Error("session grant failed", "error", err)
			writeServiceError(w, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, lprsdk.SessionResponse{
		SessionHandle: handle,
		ExpiresAt:     expiresAt,
	})
}
