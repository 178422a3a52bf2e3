// Package audit records security-relevant events: every issuance, every
// verification outcome, every revocation, every enforced request. Sinks are
// fire-and-forget from the caller's point of view; losing an audit line must
// never fail the request that produced it.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event types group actions into families.
const (
	TypeToken  = "token"  // issue / verify / revoke / status
	TypeAccess = "access" // enforced proxy requests
)

// Actions carried by events.
const (
	ActionIssue          = "lpr.issue"
	ActionVerify         = "lpr.verify"
	ActionRevoke         = "lpr.revoke"
	ActionEnforce        = "lpr.enforce"
	ActionDeviceMismatch = "lpr.device_mismatch"
)

// Results of the acted-on operation.
const (
	ResultSuccess = "success"
	ResultDenied  = "denied"
	ResultError   = "error"
)

// Event is one audit record. Actor is whoever drove the operation (subject,
// revoker, or rate identity), Target what it acted on (jti or method+path).
type Event struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Actor         string         `json:"actor,omitempty"`
	Action        string         `json:"action"`
	Target        string         `json:"target,omitempty"`
	Result        string         `json:"result"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	At            time.Time      `json:"at"`
}

// NewEvent stamps a fresh event with a uuid and the current time.
func NewEvent(eventType, action string) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		Action: action,
		At:     time.Now().UTC(),
	}
}

// WithDetail adds one detail field, allocating the map on first use.
func (e Event) WithDetail(key string, value any) Event {
	if e.Details == nil {
		e.Details = make(map[string]any, 4)
	}
	e.Details[key] = value
	return e
}

type Sink interface {
	Log(ctx context.Context, e Event) error
}

// SlogSink writes events to the structured log. It is always wired, so even
// a deployment with no durable sink keeps an audit trail in its log stream.
type SlogSink struct {
	log *slog.Logger
}

func NewSlogSink(log *slog.Logger) *SlogSink {
	return &SlogSink{log: log}
}

func (s *SlogSink) Log(ctx context.Context, e Event) error {
	attrs := []any{
		slog.String("audit_id", e.ID),
		slog.String("type", e.Type),
		slog.String("action", e.Action),
		slog.String("actor", e.Actor),
		slog.String("target", e.Target),
		slog.String("result", e.Result),
	}
	if e.CorrelationID != "" {
		attrs = append(attrs, slog.String("correlation_id", e.CorrelationID))
	}
	if len(e.Details) > 0 {
		attrs = append(attrs, slog.Any("details", e.Details))
	}
	s.log.InfoContext(ctx, "audit", attrs...)
	return nil
}

// Fanout delivers each event to every configured sink. A failing sink is
// logged and skipped; Fanout itself never returns an error.
type Fanout struct {
	log   *slog.Logger
	sinks []Sink
}

func NewFanout(log *slog.Logger, sinks ...Sink) *Fanout {
	return &Fanout{log: log, sinks: sinks}
}

func (f *Fanout) Log(ctx context.Context, e Event) error {
	for _, s := range f.sinks {
		if err := s.Log(ctx, e); err != nil {
			f.log.Warn("audit sink failed",
				slog.String("action", e.Action),
				slog.String("audit_id", e.ID),
				"error", err)
		}
	}
	return nil
}
