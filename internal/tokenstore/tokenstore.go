// Package tokenstore owns the persisted session credential and the cached
// user profile that accompanies it.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"catalogadmin/catalog-panel/internal/model"
	"catalogadmin/catalog-panel/internal/storage"
)

const (
	DefaultTokenKey = "accessToken"
	// ProfileKey is fixed; only the token key is configurable.
	ProfileKey = "userData"
)

type Store struct {
	storage  storage.Storage
	tokenKey string
}

func New(s storage.Storage, tokenKey string) *Store {
	tokenKey = strings.TrimSpace(tokenKey)
	if tokenKey == "" {
		tokenKey = DefaultTokenKey
	}
	return &Store{storage: s, tokenKey: tokenKey}
}

// ReadToken returns the persisted token. When there is none, any cached
// profile left behind is dropped as well.
func (s *Store) ReadToken() (string, bool) {
	token, ok := s.storage.GetItem(s.tokenKey)
	if !ok || token == "" {
		_ = s.storage.RemoveItem(ProfileKey)
		return "", false
	}
	return token, true
}

// UserData is the cached user written next to the token.
type UserData struct {
	model.Profile
	Role string `json:"role"`
}

// Write persists the token and its user cache. A failed write leaves
// neither entry behind.
func (s *Store) Write(token string, user UserData) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user cache: %w", err)
	}
	if err := s.storage.SetItem(s.tokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.storage.SetItem(ProfileKey, string(b)); err != nil {
		if clearErr := s.Clear(); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
		return fmt.Errorf("store user cache: %w", err)
	}
	return nil
}

// CachedUser returns the user written alongside the token, if any.
func (s *Store) CachedUser() (UserData, bool) {
	raw, ok := s.storage.GetItem(ProfileKey)
	if !ok || raw == "" {
		return UserData{}, false
	}
	var u UserData
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return UserData{}, false
	}
	return u, true
}

func (s *Store) Clear() error {
	return errors.Join(
		s.storage.RemoveItem(ProfileKey),
		s.storage.RemoveItem(s.tokenKey),
	)
}
