package http

import (
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
)

// StatusHandler reports the lifecycle state of an issued token.
type StatusHandler struct {
	Revoker *service.Revoker
}

// Status godoc
//
//	@Summary		Token Status Endpoint
//	@Description	Returns active, revoked, expired, or notFound for the given jti, plus the record
//	@Description	metadata when one exists. Unknown tokens are a regular 200 with status notFound
//	@Description	rather than a 404, so dashboards can poll expired-and-pruned tokens without special cases
//	@Tags			LPR
//	@Produce		json
//	@Param			jti	path		string					true	"Token id"
//	@Success		200	{object}	lprsdk.StatusResponse	"Lifecycle state"
//	@Failure		400	{object}	lprsdk.ErrorResponse	"Missing jti"
//	@Failure		503	{object}	lprsdk.ErrorResponse	"Revocation store unavailable"
//	@Router			/v1/lpr/status/{jti} [get].
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	jti := r.PathValue("jti")
	if jti == "" {
		lprsdk.NewAPIError(http.StatusBadRequest, lprsdk.ErrorCodeInvalidRequest, "jti is required").WriteError(w)
		return
	}

	st, err := h.Revoker.Status(r.Context(), jti)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := lprsdk.StatusResponse{
		JTI:        st.JTI,
		Status:     string(st.Status),
		Subject:    st.Subject,
		Service:    st.Service,
		ScopeCount: st.ScopeCount,
	}
	if !st.IssuedAt.IsZero() {
		t := st.IssuedAt
		resp.IssuedAt = &t
	}
	if !st.ExpiresAt.IsZero() {
		t := st.ExpiresAt
		resp.ExpiresAt = &t
	}
	if st.RemainingTTL > 0 {
		resp.RemainingTTLSeconds = int64(st.RemainingTTL.Seconds())
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
