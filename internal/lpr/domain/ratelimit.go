package domain

import (
	"math"

	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
)

// Limits are the per-identity request budgets the limiter enforces.
type Limits struct {
	PerMinute int
	PerHour   int
	Burst     int
}

// LimitsFromPolicy projects a token policy onto the limiter's fixed
// minute/hour/burst windows. Policies with a non-minute window are
// scaled to an equivalent per-minute rate, never below one request.
func LimitsFromPolicy(p jwtx.Policy) Limits {
	p = p.Normalize()

	perMinute := p.MaxRequests
	if p.TimeWindowSeconds != 60 {
		perMinute = int(math.Round(float64(p.MaxRequests) * 60 / float64(p.TimeWindowSeconds)))
		if perMinute < 1 {
			perMinute = 1
		}
	}

	return Limits{
		PerMinute: perMinute,
		PerHour:   perMinute * 60,
		Burst:     p.BurstLimit,
	}
}

// Decision is the limiter's answer for one request.
type Decision struct {
	Allowed         bool
	RemainingMinute int
	RemainingHour   int
	RemainingBurst  int

	// RetryAfter is the whole seconds until the first exhausted window
	// rolls over. Zero on allow.
	RetryAfter int

	// Degraded is set when the fallback backend answered.
	Degraded bool
}

// RateKey joins identity and endpoint into the counter key. Budgets are
// tracked per endpoint so one hot route can't starve the others.
func RateKey(identity, endpoint string) string {
	return identity + ":" + endpoint
}

// Identity derives the rate-limit identity with the fixed precedence:
// token jti, then authenticated subject, then a hash of the client's
// network signals so anonymous callers still get a stable bucket.
func Identity(jti, subject, clientIP, userAgent string) string {
	if jti != "" {
		return jti
	}
	if subject != "" {
		return subject
	}
	if len(userAgent) > 64 {
		userAgent = userAgent[:64]
	}
	return cryptox.Fingerprint(clientIP + userAgent)
}
