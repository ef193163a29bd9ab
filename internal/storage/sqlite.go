package storage

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder keeps the decision log in a SQLite table. Triggers make the
// table append-only.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteRecorder(path string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Decision log initialized", zap.String("backend", "sqlite"), zap.String("db_path", path))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		decision_id TEXT NOT NULL UNIQUE,
		interaction_id TEXT NOT NULL,
		action TEXT NOT NULL CHECK (action IN ('APPROVE', 'EDIT', 'REJECT')),
		final_reply_text TEXT NOT NULL,
		decided_at TEXT NOT NULL,
		platform TEXT NOT NULL DEFAULT '',
		user_handle TEXT NOT NULL DEFAULT '',
		original_reply TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_interaction ON decisions(interaction_id);

	CREATE TRIGGER IF NOT EXISTS decisions_no_update BEFORE UPDATE ON decisions
	BEGIN
		SELECT RAISE(ABORT, 'decision log is append-only');
	END;

	CREATE TRIGGER IF NOT EXISTS decisions_no_delete BEFORE DELETE ON decisions
	BEGIN
		SELECT RAISE(ABORT, 'decision log is append-only');
	END;
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRecorder) Append(e Entry) error {
	_, err := r.db.Exec(`
		INSERT INTO decisions (
			decision_id, interaction_id, action, final_reply_text,
			decided_at, platform, user_handle, original_reply
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.DecisionID,
		e.InteractionID,
		string(e.Action),
		e.FinalReplyText,
		e.DecidedAt.UTC().Format(time.RFC3339Nano),
		e.Platform,
		e.UserHandle,
		e.OriginalReply,
	)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Load() ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT interaction_id, action, final_reply_text, decided_at,
		       decision_id, platform, user_handle, original_reply
		FROM decisions
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			action    string
			decidedAt string
		)
		if err := rows.Scan(&e.InteractionID, &action, &e.FinalReplyText, &decidedAt,
			&e.DecisionID, &e.Platform, &e.UserHandle, &e.OriginalReply); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		e.Action = Action(action)
		if e.DecidedAt, err = time.Parse(time.RFC3339Nano, decidedAt); err != nil {
			return nil, fmt.Errorf("decision %s decided_at: %w", e.DecisionID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
