package http

import (
	"bytes"
	"context"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

// DefaultRedactFields are the response fields masked on enforced routes
// when the deployment configures nothing else.
var DefaultRedactFields = []string{"password", "secret", "token", "api_key", "authorization"}

// EnforceConfig wires the enforcement pipeline. Verifier must be pinned
// to this gateway's service name so foreign tokens bounce.
type EnforceConfig struct {
	Verifier *service.Verifier
	Limiter  *service.Limiter
	Audit    audit.Sink

	// Mode reports store degradation; nil when no failover is configured.
	Mode store.ModeReporter

	// ExemptPaths pass through without a token and without an audit
	// record. Prefix match.
	ExemptPaths []string

	// RedactFields are masked in JSON response bodies. Nil applies
	// DefaultRedactFields; an explicit empty slice disables redaction.
	RedactFields []string

	// JitterMax bounds the random delay added to allowed requests whose
	// token policy asks for jitter. Zero means 150ms.
	JitterMax time.Duration
}

// Enforce guards every request behind the full delegation pipeline:
// token extraction, verification with the request's method and path as
// the required scope, the token's own rate limit, optional jitter, then
// forwarding with response redaction. Every non-exempt request produces
// exactly one audit record, whatever step terminated it.
func Enforce(cfg EnforceConfig) httpx.Middleware {
	if cfg.JitterMax <= 0 {
		cfg.JitterMax = 150 * time.Millisecond
	}
	if cfg.RedactFields == nil {
		cfg.RedactFields = DefaultRedactFields
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := slogx.FromContext(ctx)
			start := time.Now()

			// 1. Exempt paths skip the pipeline entirely.
			for _, p := range cfg.ExemptPaths {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 2. Extract the delegation token. Ordinary bearer tokens
			// don't carry the prefix and are not accepted here.
			token := httpx.BearerToken(r)
			if token == "" || !strings.HasPrefix(token, jwtx.TokenPrefix) {
				lprsdk.ErrAuthenticationRequired.WriteError(w)
				auditEnforce(ctx, cfg.Audit, audit.ResultDenied, service.VerificationResult{}, r, http.StatusUnauthorized, start, "no delegation token")
				return
			}

			// 3. Run the verification pipeline with this request's
			// method and path as the required scope.
			device := DeviceFromRequest(r)
			fingerprint := ""
			if !device.IsZero() {
				fingerprint = device.Hash()
			}

			res, err := cfg.Verifier.Verify(ctx, service.VerifyRequest{
				Token:       token,
				Fingerprint: fingerprint,
				Origin:      r.Header.Get("Origin"),
				Required:    &jwtx.Scope{Method: r.Method, URLPattern: r.URL.Path},
			})
			if err != nil {
				l.Error("enforcement verify failed", "error", err)
				lprsdk.ErrServerError.WriteError(w)
				auditEnforce(ctx, cfg.Audit, audit.ResultError, res, r, http.StatusInternalServerError, start, "verify error")
				return
			}
			if !res.Valid {
				writeKind(w, res.Kind, res.Message)
				auditEnforce(ctx, cfg.Audit, audit.ResultDenied, res, r, res.Kind.HTTPStatus(), start, string(res.Kind))
				return
			}

			// 4. Spend the token's own budget for this endpoint.
			endpoint := r.Method + " " + r.URL.Path
			d, err := cfg.Limiter.CheckAndConsume(ctx, res.JTI, endpoint, domain.LimitsFromPolicy(res.Claims.Policy))
			if err != nil {
				writeServiceError(w, err)
				auditEnforce(ctx, cfg.Audit, audit.ResultError, res, r, http.StatusServiceUnavailable, start, "rate limiter error")
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Remaining-Minute", strconv.Itoa(d.RemainingMinute))
			h.Set("X-RateLimit-Remaining-Hour", strconv.Itoa(d.RemainingHour))
			h.Set("X-RateLimit-Remaining-Burst", strconv.Itoa(d.RemainingBurst))
			if d.Degraded || (cfg.Mode != nil && cfg.Mode.Degraded()) {
				h.Set("X-LPR-Degraded", "true")
			}

			if !d.Allowed {
				writeServiceError(w, service.Deny(d))
				auditEnforce(ctx, cfg.Audit, audit.ResultDenied, res, r, http.StatusTooManyRequests, start, "rate limited")
				return
			}

			// 5. Jitter, when the token's policy asks for it. The sleep
			// is bounded and lets go as soon as the caller does.
			if res.Claims.Policy.JitterEnabled {
				t := time.NewTimer(rand.N(cfg.JitterMax))
				select {
				case <-t.C:
				case <-ctx.Done():
					t.Stop()
					auditEnforce(context.WithoutCancel(ctx), cfg.Audit, audit.ResultError, res, r, 0, start, "request cancelled")
					return
				}
			}

			// 6. Forward with the verified claims in context, capture
			// the response for redaction.
			rec := &responseRecorder{header: make(http.Header), status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(httpx.WithClaims(ctx, res.Claims)))

			body := rec.body.Bytes()
			if strings.Contains(rec.header.Get("Content-Type"), "json") {
				body = RedactJSON(body, cfg.RedactFields)
			}

			for k, vals := range rec.header {
				if k == "Content-Length" {
					continue
				}
				h[k] = vals
			}
			h.Set("X-LPR-JTI", res.JTI)
			h.Set("X-LPR-Service", res.Service)
			h.Set("X-Operation-Time", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
			h.Set("Content-Length", strconv.Itoa(len(body)))

			w.WriteHeader(rec.status)
			_, _ = w.Write(body)

			auditEnforce(ctx, cfg.Audit, audit.ResultSuccess, res, r, rec.status, start, "")
		})
	}
}

func auditEnforce(ctx context.Context, sink audit.Sink, result string, res service.VerificationResult, r *http.Request, status int, start time.Time, reason string) {
	e := audit.NewEvent(audit.TypeAccess, audit.ActionEnforce)
	e.Actor = res.Subject
	e.Target = r.Method + " " + r.URL.Path
	e.Result = result
	e.CorrelationID = slogx.CorrelationID(ctx)
	e = e.WithDetail("status", status).WithDetail("duration_ms", time.Since(start).Milliseconds())
	if res.JTI != "" {
		e = e.WithDetail("jti", res.JTI)
	}
	if res.Service != "" {
		e = e.WithDetail("service", res.Service)
	}
	if reason != "" {
		e = e.WithDetail("reason", reason)
	}
	_ = sink.Log(ctx, e)
}

// responseRecorder buffers the downstream response so the body can be
// redacted before anything reaches the wire.
type responseRecorder struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(p)
}
