package lprsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the LPR credential service. All operations are
// unauthenticated at the transport level; the delegation token itself is
// the credential and travels in request bodies or Bearer headers.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// postJSON marshals body and POSTs it to path.
func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// get performs a GET request against path.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON decodes a JSON response into the target. Non-2xx responses
// come back as a typed *APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GrantSession parks an authenticated session and returns its one-time
// handle. The grant token authorizes the call; only the login
// collaborator should hold it.
func (c *Client) GrantSession(ctx context.Context, grantToken string, req SessionRequest) (*SessionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/v1/lpr/session"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Session-Grant-Token", grantToken)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var sessionResp SessionResponse
	if err := decodeJSON(resp, &sessionResp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &sessionResp, nil
}

// Issue exchanges a one-time session handle for a delegation token.
func (c *Client) Issue(ctx context.Context, req IssueRequest) (*IssueResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/lpr/issue", req)
	if err != nil {
		return nil, err
	}

	var issueResp IssueResponse
	if err := decodeJSON(resp, &issueResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &issueResp, nil
}

// Verify runs the verification pipeline against a token. Both verdicts
// come back as a 200 response; inspect Valid and Error.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/lpr/verify", req)
	if err != nil {
		return nil, err
	}

	var verifyResp VerifyResponse
	if err := decodeJSON(resp, &verifyResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &verifyResp, nil
}

// Revoke kills a token by jti. Idempotent: revoking an already-dead or
// unknown jti also succeeds.
func (c *Client) Revoke(ctx context.Context, jti, reason string) (*RevokeResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/lpr/revoke", RevokeRequest{JTI: jti, Reason: reason})
	if err != nil {
		return nil, err
	}

	var revokeResp RevokeResponse
	if err := decodeJSON(resp, &revokeResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &revokeResp, nil
}

// Status reports a token's lifecycle state without needing the token
// itself.
func (c *Client) Status(ctx context.Context, jti string) (*StatusResponse, error) {
	resp, err := c.get(ctx, "/v1/lpr/status/"+url.PathEscape(jti))
	if err != nil {
		return nil, err
	}

	var statusResp StatusResponse
	if err := decodeJSON(resp, &statusResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &statusResp, nil
}

// GetLiveness checks whether the service process is up.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.get(ctx, "/livez")
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks whether the service can actually serve: store
// reachable and signing keys loaded. A degraded fail-open deployment
// still reports ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.get(ctx, "/readyz")
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
