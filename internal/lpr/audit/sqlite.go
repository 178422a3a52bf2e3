package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit/migrations"
)

// SQLiteSink keeps a durable, queryable audit trail in an embedded database.
// One table, append-heavy, pruned by the housekeeping loop.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

// ApplyMigrations applies any pending schema migrations from the embedded
// migration files.
func (s *SQLiteSink) ApplyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *SQLiteSink) Log(ctx context.Context, e Event) error {
	details := "{}"
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		details = string(raw)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, type, actor, action, target, result, correlation_id, details, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Type, e.Actor, e.Action, e.Target, e.Result, e.CorrelationID, details, e.At.UTC())
	return err
}

// Recent returns the newest events, up to limit, newest first.
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, actor, action, target, result, correlation_id, details, at
		FROM audit_events
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var details string
		if err := rows.Scan(&e.ID, &e.Type, &e.Actor, &e.Action, &e.Target, &e.Result, &e.CorrelationID, &details, &e.At); err != nil {
			return nil, err
		}
		if details != "" && details != "{}" {
			if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Prune deletes events older than cutoff and reports how many went.
func (s *SQLiteSink) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
