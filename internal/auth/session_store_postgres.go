package auth

import (
	"database/sql"
	"fmt"
)

type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) (*PostgresSessionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresSessionStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresSessionStore) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS auth_sessions (
	token TEXT PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	user_id BIGINT NOT NULL,
	email TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure auth_sessions schema: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) LoadAll() ([]Session, error) {
	rows, err := s.db.Query(`
SELECT token, session_id, user_id, email, created_at, expires_at
FROM auth_sessions
ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := make([]Session, 0)
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.Token, &sess.ID, &sess.UserID, &sess.Email, &sess.CreatedAt, &sess.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (s *PostgresSessionStore) Put(sess Session) error {
	const q = `
INSERT INTO auth_sessions (token, session_id, user_id, email, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (token) DO UPDATE
SET expires_at = EXCLUDED.expires_at`
	if _, err := s.db.Exec(q, sess.Token, sess.ID, sess.UserID, sess.Email, sess.CreatedAt, sess.ExpiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) Delete(token string) error {
	if _, err := s.db.Exec(`DELETE FROM auth_sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
