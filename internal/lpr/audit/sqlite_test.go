package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
)

func newTestSQLiteSink(t *testing.T) *audit.SQLiteSink {
	t.Helper()

	sink, err := audit.NewSQLiteSink(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	require.NoError(t, sink.ApplyMigrations())
	return sink
}

func TestSQLiteSinkRoundTrip(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()

	e := audit.NewEvent(audit.TypeToken, audit.ActionIssue).
		WithDetail("service", "reports-api")
	e.Actor = "user-42"
	e.Target = "01JABCDEF0000000000000001"
	e.Result = audit.ResultSuccess
	e.CorrelationID = "cid-7"

	require.NoError(t, sink.Log(ctx, e))

	events, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	require.Equal(t, e.ID, got.ID)
	require.Equal(t, audit.ActionIssue, got.Action)
	require.Equal(t, "user-42", got.Actor)
	require.Equal(t, audit.ResultSuccess, got.Result)
	require.Equal(t, "cid-7", got.CorrelationID)
	require.Equal(t, "reports-api", got.Details["service"])
}

func TestSQLiteSinkRecentOrder(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		e := audit.NewEvent(audit.TypeToken, audit.ActionVerify)
		e.Result = audit.ResultSuccess
		e.At = base.Add(time.Duration(i) * time.Minute)
		e.Target = string(rune('a' + i))
		require.NoError(t, sink.Log(ctx, e))
	}

	events, err := sink.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "c", events[0].Target)
	require.Equal(t, "b", events[1].Target)
}

func TestSQLiteSinkPrune(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()

	old := audit.NewEvent(audit.TypeAccess, audit.ActionEnforce)
	old.Result = audit.ResultSuccess
	old.At = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, sink.Log(ctx, old))

	fresh := audit.NewEvent(audit.TypeAccess, audit.ActionEnforce)
	fresh.Result = audit.ResultSuccess
	require.NoError(t, sink.Log(ctx, fresh))

	pruned, err := sink.Prune(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), pruned)

	events, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, fresh.ID, events[0].ID)
}
