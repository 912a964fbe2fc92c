package auth

import (
	"database/sql"
	"errors"
	"fmt"
)

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) (*PostgresUserStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresUserStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresUserStore) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS auth_users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL DEFAULT '',
	document TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure auth_users schema: %w", err)
	}
	return nil
}

const selectUser = `SELECT id, name, email, phone, document, password_hash FROM auth_users`

func (s *PostgresUserStore) GetByEmail(email string) (User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return User{}, ErrUserNotFound
	}
	return s.scanOne(selectUser+` WHERE email = $1`, email)
}

func (s *PostgresUserStore) GetByID(id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrUserNotFound
	}
	return s.scanOne(selectUser+` WHERE id = $1`, id)
}

func (s *PostgresUserStore) scanOne(q string, arg any) (User, error) {
	var u User
	if err := s.db.QueryRow(q, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Document, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query auth user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) Put(user User) (User, error) {
	user.Email = normalizeEmail(user.Email)
	if user.Email == "" || user.PasswordHash == "" {
		return User{}, fmt.Errorf("email and password hash are required")
	}

	const q = `
INSERT INTO auth_users (name, email, phone, document, password_hash, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
	phone = EXCLUDED.phone,
	document = EXCLUDED.document,
	password_hash = EXCLUDED.password_hash,
	updated_at = NOW()
RETURNING id`
	if err := s.db.QueryRow(q, user.Name, user.Email, user.Phone, user.Document, user.PasswordHash).Scan(&user.ID); err != nil {
		return User{}, fmt.Errorf("upsert auth user: %w", err)
	}
	return user, nil
}
