package http

import (
	"encoding/json"
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

// VerifyHandler answers delegation checks for resource servers that
// terminate requests themselves instead of sitting behind the gateway.
type VerifyHandler struct {
	Verifier *service.Verifier
	Audit    audit.Sink
}

// Verify godoc
//
//	@Summary		Verify Delegation Token Endpoint
//	@Description	Runs the full verification pipeline: signature, lifetime, revocation, device binding,
//	@Description	and optionally scope and origin when the caller supplies the request it is about to serve
//	@Description	Both verdicts return 200 with the outcome in the body; only a malformed request body is a 400
//	@Tags			LPR
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lprsdk.VerifyRequest	true	"Token and optional request context"
//	@Success		200		{object}	lprsdk.VerifyResponse	"Verification verdict"
//	@Failure		400		{object}	lprsdk.ErrorResponse	"Malformed request body"
//	@Router			/v1/lpr/verify [post].
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Parse the request body.
	var req lprsdk.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		lprsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Token == "" {
		lprsdk.NewAPIError(http.StatusBadRequest, lprsdk.ErrorCodeInvalidRequest, "token is required").WriteError(w)
		return
	}

	// 2. Scope and origin checks run only when the caller describes the
	// request it wants to serve. Method and URL travel as a pair.
	var required *jwtx.Scope
	switch {
	case req.RequestMethod != "" && req.RequestURL != "":
		required = &jwtx.Scope{Method: req.RequestMethod, URLPattern: req.RequestURL}
	case req.RequestMethod != "" || req.RequestURL != "":
		lprsdk.NewAPIError(http.StatusBadRequest, lprsdk.ErrorCodeInvalidRequest,
			"request_method and request_url must be provided together").WriteError(w)
		return
	}

	// 3. Run the pipeline.
	res, err := h.Verifier.Verify(ctx, service.VerifyRequest{
		Token:       req.Token,
		Fingerprint: req.DeviceFingerprint,
		Origin:      req.RequestOrigin,
		Required:    required,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("verification failed", "error", err)
		lprsdk.ErrServerError.WriteError(w)
		return
	}

	h.auditVerify(r, res)

	// 4. Same status either way; the verdict lives in the body.
	resp := lprsdk.VerifyResponse{
		Valid:   res.Valid,
		JTI:     res.JTI,
		Subject: res.Subject,
		Service: res.Service,
		Scopes:  res.Scopes,
	}
	if !res.ExpiresAt.IsZero() {
		exp := res.ExpiresAt
		resp.ExpiresAt = &exp
	}
	if !res.Valid {
		resp.Error = string(res.Kind)
		resp.ErrorDescription = res.Message
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *VerifyHandler) auditVerify(r *http.Request, res service.VerificationResult) {
	ctx := r.Context()
	e := audit.NewEvent(audit.TypeToken, audit.ActionVerify)
	e.Actor = res.Subject
	e.Target = res.JTI
	e.CorrelationID = slogx.CorrelationID(ctx)
	e = e.WithDetail("valid", res.Valid)
	if res.Service != "" {
		e = e.WithDetail("service", res.Service)
	}
	if res.Valid {
		e.Result = audit.ResultSuccess
	} else {
		e.Result = audit.ResultDenied
		e = e.WithDetail("reason", string(res.Kind))
	}
	_ = h.Audit.Log(ctx, e)
}
