package session

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore persists session contexts as JSON rows in a local SQLite
// database, so a restarted process still knows what "it" was.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	query := `CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		context TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, err
	}

	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Load(sessionID string) (*Context, error) {
	var raw string
	query := `SELECT context FROM sessions WHERE session_id = ?`
	err := s.DB.QueryRow(query, sessionID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ctx Context
	if err := json.Unmarshal([]byte(raw), &ctx); err != nil {
		return nil, fmt.Errorf("corrupt session record %s: %w", sessionID, err)
	}
	return &ctx, nil
}

func (s *SQLiteStore) Save(sessionID string, sc *Context) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return err
	}

	query := `INSERT INTO sessions (session_id, context, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(session_id) DO UPDATE SET context = excluded.context, updated_at = excluded.updated_at`
	_, err = s.DB.Exec(query, sessionID, string(raw))
	return err
}

func (s *SQLiteStore) Delete(sessionID string) error {
	query := `DELETE FROM sessions WHERE session_id = ?`
	_, err := s.DB.Exec(query, sessionID)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
