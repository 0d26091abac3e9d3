package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/sqlitedb"
)

const schema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	id               TEXT PRIMARY KEY,
	session_id       TEXT NOT NULL,
	role             TEXT NOT NULL,
	query            TEXT NOT NULL,
	answer           TEXT NOT NULL,
	latency_ms       INTEGER NOT NULL,
	tokens           INTEGER NOT NULL,
	retrieval_scores TEXT NOT NULL,
	executed_actions TEXT NOT NULL,
	failed_actions   TEXT NOT NULL,
	degraded         TEXT NOT NULL,
	created_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analytics_events_session ON analytics_events(session_id, created_at);

CREATE TABLE IF NOT EXISTS confessions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// SQLiteSink stores analytics events and confessions in SQLite.
type SQLiteSink struct {
	db *sql.DB
}

var (
	_ core.AnalyticsSink   = (*SQLiteSink)(nil)
	_ core.ConfessionStore = (*SQLiteSink)(nil)
)

// NewSQLiteSink creates the schema on db if needed.
func NewSQLiteSink(ctx context.Context, db *sql.DB) (*SQLiteSink, error) {
	if err := sqlitedb.Exec(ctx, db, schema); err != nil {
		return nil, err
	}
	return &SQLiteSink{db: db}, nil
}

// OpenSQLiteSink opens the database at path and creates the schema.
func OpenSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLiteSink(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Write implements core.AnalyticsSink.
func (s *SQLiteSink) Write(ctx context.Context, ev core.AnalyticsEvent) error {
	cols, err := encodeJSON(ev.RetrievalScores, ev.ExecutedActions, ev.FailedActions, ev.Degraded)
	if err != nil {
		return err
	}
	id := ev.ID
	if id == "" {
		id = core.NewID()
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics_events
			(id, session_id, role, query, answer, latency_ms, tokens,
			 retrieval_scores, executed_actions, failed_actions, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ev.SessionID, string(ev.Role), ev.Query, ev.Answer, ev.LatencyMS, ev.Tokens,
		cols[0], cols[1], cols[2], cols[3], ts.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

func encodeJSON(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode analytics column: %w", err)
		}
		out[i] = string(b)
	}
	return out, nil
}

// Events returns the events of a session in write order.
func (s *SQLiteSink) Events(ctx context.Context, sessionID string) ([]core.AnalyticsEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, query, answer, latency_ms, tokens,
		       retrieval_scores, executed_actions, failed_actions, degraded, created_at
		FROM analytics_events WHERE session_id = ? ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query analytics events: %w", err)
	}
	defer rows.Close()

	var out []core.AnalyticsEvent
	for rows.Next() {
		var (
			ev                                   core.AnalyticsEvent
			role                                 string
			scores, executed, failed, degradedJS string
			createdAt                            int64
		)
		if err := rows.Scan(&ev.ID, &ev.SessionID, &role, &ev.Query, &ev.Answer, &ev.LatencyMS, &ev.Tokens,
			&scores, &executed, &failed, &degradedJS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan analytics event: %w", err)
		}
		ev.Role = core.RoleID(role)
		ev.Timestamp = time.UnixMilli(createdAt).UTC()
		for _, c := range []struct {
			src string
			dst any
		}{
			{scores, &ev.RetrievalScores},
			{executed, &ev.ExecutedActions},
			{failed, &ev.FailedActions},
			{degradedJS, &ev.Degraded},
		} {
			if err := json.Unmarshal([]byte(c.src), c.dst); err != nil {
				return nil, fmt.Errorf("decode analytics column: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// RoleCounts returns the number of turns per role.
func (s *SQLiteSink) RoleCounts(ctx context.Context) (map[core.RoleID]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM analytics_events GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("count analytics events: %w", err)
	}
	defer rows.Close()

	out := map[core.RoleID]int{}
	for rows.Next() {
		var (
			role string
			n    int
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		out[core.RoleID(role)] = n
	}
	return out, rows.Err()
}

// StoreConfession implements core.ConfessionStore.
func (s *SQLiteSink) StoreConfession(ctx context.Context, sessionID, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO confessions (session_id, body, created_at) VALUES (?, ?, ?)`,
		sessionID, text, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert confession: %w", err)
	}
	return nil
}

// ConfessionCount returns the number of stored confessions.
func (s *SQLiteSink) ConfessionCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM confessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count confessions: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error { return s.db.Close() }
