package http

import (
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
)

// JWKSHandler exposes the JSON Web Key Set so resource servers can
// verify delegation tokens locally instead of calling /verify per
// request. Symmetric (HS256) keys never appear here.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify delegation tokens. Only asymmetric
//	@Description	public keys are published; local verification still needs a revocation check
//	@Description	via the verify or status endpoints for tokens that may have been revoked.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	lprsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(ring *jwtx.Keyring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, lprsdk.JWKSResponse(ring.PublicJWKS()))
	}
}
