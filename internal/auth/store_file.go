package auth

import (
	"fmt"
	"sort"
	"strings"
)

// FileUserStore is an InMemoryUserStore mirrored to a JSON array on disk,
// ordered by id.
type FileUserStore struct {
	*InMemoryUserStore
	path string
}

func NewFileUserStore(path string) (*FileUserStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("user state file path is required")
	}

	var decoded []User
	if err := readJSONFile(path, &decoded); err != nil {
		return nil, err
	}
	mem := NewInMemoryUserStore()
	for _, u := range decoded {
		if strings.TrimSpace(u.Email) == "" {
			continue
		}
		putUser(mem.users, &mem.nextID, u)
	}
	return &FileUserStore{InMemoryUserStore: mem, path: path}, nil
}

// Put stores the user and rewrites the file; the in-memory change is undone
// if the write fails.
func (s *FileUserStore) Put(user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(user.Email)
	prev, existed := s.users[key]
	prevNext := s.nextID

	stored := putUser(s.users, &s.nextID, user)
	if err := writeJSONFile(s.path, s.sortedLocked()); err != nil {
		if existed {
			s.users[key] = prev
		} else {
			delete(s.users, key)
		}
		s.nextID = prevNext
		return User{}, err
	}
	return stored, nil
}

func (s *FileUserStore) sortedLocked() []User {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
