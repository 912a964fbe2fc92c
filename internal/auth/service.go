package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenBytes = 32

// Service authenticates users against a UserStore and issues opaque bearer
// tokens. Sessions live in memory and are written through to an optional
// SessionStore.
type Service struct {
	users   UserStore
	store   SessionStore
	cost    int
	ttl     time.Duration
	nowFunc func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

type ServiceConfig struct {
	// BcryptCost defaults to bcrypt.DefaultCost when zero.
	BcryptCost int
	SessionTTL time.Duration
	// SessionStore wins over SessionStateFile. With neither set, sessions
	// do not survive a restart.
	SessionStore     SessionStore
	SessionStateFile string
}

func NewService(users UserStore, cfg ServiceConfig) (*Service, error) {
	switch {
	case users == nil:
		return nil, fmt.Errorf("user store is required")
	case cfg.SessionTTL <= 0:
		return nil, fmt.Errorf("session TTL must be > 0")
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	store := cfg.SessionStore
	if store == nil && strings.TrimSpace(cfg.SessionStateFile) != "" {
		fs, err := NewFileSessionStore(cfg.SessionStateFile)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	return &Service{
		users:    users,
		store:    store,
		cost:     cost,
		ttl:      cfg.SessionTTL,
		nowFunc:  time.Now,
		sessions: make(map[string]Session),
	}, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *Service) VerifyPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// Register stores a user with a freshly hashed password.
func (s *Service) Register(u User, password string) (User, error) {
	if strings.TrimSpace(u.Email) == "" || password == "" {
		return User{}, fmt.Errorf("email and password are required")
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = hash
	return s.users.Put(u)
}

// Login checks the credentials and opens a new session. Unknown emails and
// wrong passwords are indistinguishable to the caller; other store failures
// are returned wrapped.
func (s *Service) Login(email, password string) (Session, User, error) {
	u, err := s.users.GetByEmail(email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, User{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, User{}, fmt.Errorf("look up user: %w", err)
	}
	if !s.VerifyPassword(password, u.PasswordHash) {
		return Session{}, User{}, ErrInvalidCredentials
	}

	token, err := generateToken(tokenBytes)
	if err != nil {
		return Session{}, User{}, fmt.Errorf("generate token: %w", err)
	}
	now := s.nowFunc()
	sess := Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if s.store != nil {
		if err := s.store.Put(sess); err != nil {
			return Session{}, User{}, fmt.Errorf("save session: %w", err)
		}
	}
	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()

	return sess, u, nil
}

// ValidateToken returns the live session for token. Expired sessions are
// dropped on sight.
func (s *Service) ValidateToken(token string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrInvalidToken
	}
	if s.nowFunc().After(sess.ExpiresAt) {
		s.forget(token)
		return Session{}, ErrInvalidToken
	}
	return sess, nil
}

func (s *Service) forget(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	if s.store != nil {
		// Best effort; a stale row is skipped again on the next load.
		_ = s.store.Delete(token)
	}
}

// Profile resolves the user behind a valid token.
func (s *Service) Profile(token string) (User, error) {
	sess, err := s.ValidateToken(token)
	if err != nil {
		return User{}, err
	}
	u, err := s.users.GetByID(sess.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidToken
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// LoadSessionState replaces the in-memory sessions with the unexpired ones
// held by the session store.
func (s *Service) LoadSessionState() error {
	if s.store == nil {
		return nil
	}
	all, err := s.store.LoadAll()
	if err != nil {
		return fmt.Errorf("load session state: %w", err)
	}

	now := s.nowFunc()
	live := make(map[string]Session, len(all))
	for _, sess := range all {
		if sess.Token == "" || now.After(sess.ExpiresAt) {
			continue
		}
		live[sess.Token] = sess
	}

	s.mu.Lock()
	s.sessions = live
	s.mu.Unlock()
	return nil
}

func generateToken(n int) (string, error) {
	if n < 16 {
		return "", fmt.Errorf("token length too short")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
