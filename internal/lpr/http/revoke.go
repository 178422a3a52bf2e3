package http

import (
	"encoding/json"
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
)

// RevokeHandler kills delegation tokens before their natural expiry.
type RevokeHandler struct {
	Revoker *service.Revoker
}

// Revoke godoc
//
//	@Summary		Revoke Delegation Token Endpoint
//	@Description	Marks the token revoked in the shared store so every verifier rejects it within one lookup
//	@Description	Idempotent: revoking an already revoked or unknown jti still returns success, and an unknown
//	@Description	jti leaves a tombstone so the token stays dead even if the record write that created it was lost
//	@Tags			LPR
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lprsdk.RevokeRequest	true	"Token id and reason"
//	@Success		200		{object}	lprsdk.RevokeResponse	"Revocation recorded"
//	@Failure		400		{object}	lprsdk.ErrorResponse	"Missing jti"
//	@Failure		503		{object}	lprsdk.ErrorResponse	"Revocation store unavailable"
//	@Router			/v1/lpr/revoke [post].
func (h *RevokeHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Parse the request body.
	var req lprsdk.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		lprsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	// 2. Flip the record. The service audits the outcome.
	if err := h.Revoker.Revoke(ctx, req.JTI, req.Reason, "api"); err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lprsdk.RevokeResponse{
		Revoked: true,
		JTI:     req.JTI,
	})
}
