package auth

import (
	"fmt"
	"strings"
	"sync"
)

// SessionStore persists issued sessions keyed by token. The service keeps
// its own in-memory index and writes through on every change.
type SessionStore interface {
	LoadAll() ([]Session, error)
	Put(sess Session) error
	Delete(token string) error
}

// FileSessionStore keeps sessions in a JSON object keyed by token.
type FileSessionStore struct {
	path string

	mu       sync.Mutex
	sessions map[string]Session
}

func NewFileSessionStore(path string) (*FileSessionStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("session state file path is required")
	}
	s := &FileSessionStore{path: path, sessions: make(map[string]Session)}
	if err := readJSONFile(path, &s.sessions); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileSessionStore) LoadAll() ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

func (s *FileSessionStore) Put(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.sessions[sess.Token]
	s.sessions[sess.Token] = sess
	if err := writeJSONFile(s.path, s.sessions); err != nil {
		if existed {
			s.sessions[sess.Token] = prev
		} else {
			delete(s.sessions, sess.Token)
		}
		return err
	}
	return nil
}

func (s *FileSessionStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.sessions[token]
	if !existed {
		return nil
	}
	delete(s.sessions, token)
	if err := writeJSONFile(s.path, s.sessions); err != nil {
		s.sessions[token] = prev
		return err
	}
	return nil
}
