package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/sqlitedb"
)

const stateSchema = `
CREATE TABLE IF NOT EXISTS conversation_states (
	session_id    TEXT PRIMARY KEY,
	turns_json    TEXT NOT NULL,
	executed_json TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversation_states_updated ON conversation_states(updated_at);
`

// SQLiteStore persists conversation states in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ core.StateStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates the schema on db if needed.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if err := sqlitedb.Exec(ctx, db, stateSchema); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLiteStore opens the database at path and creates the schema.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Load returns the stored state or a fresh state for unknown ids.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*core.ConversationState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT turns_json, executed_json, created_at, updated_at
		FROM conversation_states WHERE session_id = ?`, sessionID)

	var (
		turnsJSON, executedJSON string
		createdAt, updatedAt    int64
	)
	err := row.Scan(&turnsJSON, &executedJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewConversationState(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation state: %w", err)
	}

	st := &core.ConversationState{
		SessionID: sessionID,
		Created:   time.UnixMilli(createdAt).UTC(),
		Updated:   time.UnixMilli(updatedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(turnsJSON), &st.Turns); err != nil {
		return nil, fmt.Errorf("decode turns: %w", err)
	}
	if err := json.Unmarshal([]byte(executedJSON), &st.Executed); err != nil {
		return nil, fmt.Errorf("decode executed actions: %w", err)
	}
	if st.Turns == nil {
		st.Turns = []core.Turn{}
	}
	if st.Executed == nil {
		st.Executed = map[core.ActionKind]time.Time{}
	}
	return st, nil
}

// Save upserts state.
func (s *SQLiteStore) Save(ctx context.Context, state *core.ConversationState) error {
	if state == nil || state.SessionID == "" {
		return fmt.Errorf("state must carry a session id")
	}
	turns, err := json.Marshal(state.Turns)
	if err != nil {
		return fmt.Errorf("encode turns: %w", err)
	}
	executed, err := json.Marshal(state.Executed)
	if err != nil {
		return fmt.Errorf("encode executed actions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_states (session_id, turns_json, executed_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			turns_json = excluded.turns_json,
			executed_json = excluded.executed_json,
			updated_at = excluded.updated_at`,
		state.SessionID, string(turns), string(executed),
		state.Created.UnixMilli(), state.Updated.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete conversation state: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
