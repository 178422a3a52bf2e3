package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

// NewProxy returns the handler the enforcement pipeline forwards to.
// With an upstream URL it reverse-proxies; without one it serves a
// local echo endpoint, which keeps single-binary deployments and
// integration tests self-contained.
func NewProxy(upstream string) (http.Handler, error) {
	if upstream == "" {
		return echoHandler(), nil
	}

	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		l := slogx.FromContext(r.Context())
		l.Error("upstream request failed", "upstream", target.Host, "error", err)
		lprsdk.NewAPIError(http.StatusBadGateway, lprsdk.ErrorCodeBackendUnavailable, "upstream unavailable").WriteError(w)
	}
	return proxy, nil
}

// echoHandler reflects the request back to the caller, including the
// delegated identity the pipeline resolved.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		}
		if q := r.URL.RawQuery; q != "" {
			resp["query"] = q
		}
		if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
			resp["subject"] = claims.Subject
			resp["jti"] = claims.ID
		}
		var body any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			resp["body"] = body
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	})
}
