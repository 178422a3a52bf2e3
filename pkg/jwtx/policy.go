package jwtx

// Default per-token rate limits applied when the issuance request leaves
// them unset.
const (
	DefaultMaxRequests       = 100
	DefaultTimeWindowSeconds = 60
	DefaultBurstLimit        = 10
)

// Policy is the rate-limit contract embedded in every token. The
// enforcement layer reads it straight from the verified claims, so a
// holder can never argue their way past it.
type Policy struct {
	// MaxRequests allowed per TimeWindowSeconds.
	MaxRequests int `json:"max_requests"`

	// TimeWindowSeconds is the sliding window the request budget
	// applies to.
	TimeWindowSeconds int `json:"time_window_seconds"`

	// BurstLimit caps back-to-back requests within a single second.
	BurstLimit int `json:"burst_limit"`

	// JitterEnabled asks the enforcement layer to add a small random
	// delay to each allowed request.
	JitterEnabled bool `json:"jitter_enabled"`
}

// Normalize fills unset fields with the defaults. Zero or negative
// values count as unset.
func (p Policy) Normalize() Policy {
	if p.MaxRequests <= 0 {
		p.MaxRequests = DefaultMaxRequests
	}
	if p.TimeWindowSeconds <= 0 {
		p.TimeWindowSeconds = DefaultTimeWindowSeconds
	}
	if p.BurstLimit <= 0 {
		p.BurstLimit = DefaultBurstLimit
	}
	return p
}
