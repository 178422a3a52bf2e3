package lprsdk

import (
	"context"
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
)

// GetJWKS retrieves the JSON Web Key Set the service signs with.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.get(ctx, "/.well-known/jwks.json")
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}

// LocalKeyring fetches the JWKS and loads it into a verification-only
// keyring, letting a resource server check token signatures without a
// round trip per request. Revocation is not covered by a signature
// check; callers that accept revocable tokens still consult the verify
// or status endpoints.
func (c *Client) LocalKeyring(ctx context.Context) (*jwtx.Keyring, error) {
	jwks, err := c.GetJWKS(ctx)
	if err != nil {
		return nil, err
	}

	ring := jwtx.NewKeyring()
	if err := ring.ResetFromJWKS(jwtx.JWKS(*jwks)); err != nil {
		return nil, err
	}
	return ring, nil
}
