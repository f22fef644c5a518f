package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS edit_sessions (
	id          TEXT PRIMARY KEY,
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now')),
	edits       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edit_sessions_recorded_at ON edit_sessions(recorded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendSession(ctx context.Context, session model.EditSession) error {
	edits := session.Edits
	if edits == nil {
		edits = []model.EditEvent{}
	}
	editsJSON, err := json.Marshal(edits)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal edits")
	}

	recordedAt := session.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO edit_sessions (id, recorded_at, edits) VALUES (?, ?, ?)`,
		session.SessionID, recordedAt.UTC(), string(editsJSON),
	)
	return eris.Wrapf(err, "sqlite: insert session %s", session.SessionID)
}

func (s *SQLiteStore) ReadSessions(ctx context.Context) ([]model.EditSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recorded_at, edits FROM edit_sessions ORDER BY recorded_at ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sessions")
	}
	defer rows.Close()

	var sessions []model.EditSession
	for rows.Next() {
		var sess model.EditSession
		var editsJSON string
		if err := rows.Scan(&sess.SessionID, &sess.RecordedAt, &editsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan session")
		}
		if err := json.Unmarshal([]byte(editsJSON), &sess.Edits); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal edits for %s", sess.SessionID)
		}
		sessions = append(sessions, sess)
	}
	return sessions, eris.Wrap(rows.Err(), "sqlite: list sessions iterate")
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: get setting %s", key)
	}
	return value, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return eris.Wrapf(err, "sqlite: set setting %s", key)
}
