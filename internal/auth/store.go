package auth

import (
	"errors"
	"strings"
	"sync"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore looks users up by login email or id. Put inserts or replaces by
// email and assigns an id to new users.
type UserStore interface {
	GetByEmail(email string) (User, error)
	GetByID(id int64) (User, error)
	Put(user User) (User, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type InMemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]User
	nextID int64
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]User), nextID: 1}
}

func (s *InMemoryUserStore) GetByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[normalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *InMemoryUserStore) GetByID(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByID(s.users, id)
}

func (s *InMemoryUserStore) Put(user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putUser(s.users, &s.nextID, user), nil
}

func findByID(users map[string]User, id int64) (User, error) {
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

// putUser keeps the existing id when the email is already known.
func putUser(users map[string]User, nextID *int64, user User) User {
	user.Email = normalizeEmail(user.Email)
	if existing, ok := users[user.Email]; ok {
		user.ID = existing.ID
	}
	if user.ID == 0 {
		user.ID = *nextID
	}
	if user.ID >= *nextID {
		*nextID = user.ID + 1
	}
	users[user.Email] = user
	return user
}
