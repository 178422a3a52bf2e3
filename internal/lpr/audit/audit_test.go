package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
)

type recordingSink struct {
	events []audit.Event
}

func (r *recordingSink) Log(_ context.Context, e audit.Event) error {
	r.events = append(r.events, e)
	return nil
}

type failingSink struct{}

func (failingSink) Log(context.Context, audit.Event) error {
	return errors.New("broker gone")
}

func TestNewEvent(t *testing.T) {
	e := audit.NewEvent(audit.TypeToken, audit.ActionIssue)

	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	require.Equal(t, audit.TypeToken, e.Type)
	require.Equal(t, audit.ActionIssue, e.Action)
	require.WithinDuration(t, time.Now().UTC(), e.At, time.Second)
}

func TestWithDetail(t *testing.T) {
	e := audit.NewEvent(audit.TypeToken, audit.ActionIssue).
		WithDetail("service", "reports-api").
		WithDetail("scope_count", 2)

	require.Equal(t, "reports-api", e.Details["service"])
	require.Equal(t, 2, e.Details["scope_count"])
}

func TestSlogSinkWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	sink := audit.NewSlogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	e := audit.NewEvent(audit.TypeAccess, audit.ActionEnforce)
	e.Actor = "user-42"
	e.Target = "GET /api/reports"
	e.Result = audit.ResultDenied
	e.CorrelationID = "cid-1"
	require.NoError(t, sink.Log(context.Background(), e))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "audit", line["msg"])
	require.Equal(t, audit.ActionEnforce, line["action"])
	require.Equal(t, audit.ResultDenied, line["result"])
	require.Equal(t, "cid-1", line["correlation_id"])
}

func TestFanoutSurvivesFailingSink(t *testing.T) {
	rec := &recordingSink{}
	fanout := audit.NewFanout(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		failingSink{}, rec,
	)

	e := audit.NewEvent(audit.TypeToken, audit.ActionRevoke)
	require.NoError(t, fanout.Log(context.Background(), e))
	require.Len(t, rec.events, 1)
	require.Equal(t, e.ID, rec.events[0].ID)
}
