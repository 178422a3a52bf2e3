package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

// IssueHandler exchanges one-time session handles for delegation tokens.
type IssueHandler struct {
	Issuer   *service.Issuer
	Sessions *service.SessionGrantor
}

// Issue godoc
//
//	@Summary		Issue Delegation Token Endpoint
//	@Description	Exchanges a one-time session handle for a short-lived, scope-limited delegation token
//	@Description	The subject and target service come from the consumed session, never from the request body,
//	@Description	so a caller cannot mint tokens for anyone but the user who logged in. Requires granted consent
//	@Tags			LPR
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lprsdk.IssueRequest		true	"Delegation request"
//	@Success		200		{object}	lprsdk.IssueResponse	"Signed token and its metadata"
//	@Failure		400		{object}	lprsdk.ErrorResponse	"Malformed body, invalid scopes, or missing consent"
//	@Failure		401		{object}	lprsdk.ErrorResponse	"Session handle missing, expired, or already used"
//	@Failure		503		{object}	lprsdk.ErrorResponse	"Revocation store unavailable"
//	@Router			/v1/lpr/issue [post].
func (h *IssueHandler) Issue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Parse the request body.
	var req lprsdk.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		lprsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	// 2. Redeem the session handle. Single use: the store deletes it in
	// the same step that returns it.
	sess, err := h.Sessions.Redeem(ctx, req.SessionHandle)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			lprsdk.ErrSessionInvalid.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("session redemption failed", "error", err)
		writeServiceError(w, err)
		return
	}

	// 3. Mint. The issuer validates scopes, gates on consent, clamps the
	// TTL, and records the token before releasing it.
	tok, err := h.Issuer.Issue(ctx, service.IssueRequest{
		Subject:     sess.UserID,
		Service:     sess.Service,
		Scopes:      req.Scopes,
		Origins:     req.Origins,
		TTL:         time.Duration(req.TTLSeconds) * time.Second,
		Policy:      req.Policy,
		Fingerprint: req.DeviceFingerprint,
		Purpose:     req.Purpose,
		Consent:     req.Consent,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lprsdk.IssueResponse{
		Token:     tok.Token,
		JTI:       tok.JTI,
		ExpiresAt: tok.ExpiresAt,
		Scopes:    tok.Scopes,
	})
}
