package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSessionStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewFileSessionStore(path)
	if err != nil {
		t.Fatalf("NewFileSessionStore() error: %v", err)
	}

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, tok := range []string{"a", "b"} {
		if err := store.Put(Session{ID: "sid-" + tok, Token: tok, UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
			t.Fatalf("Put(%s) error: %v", tok, err)
		}
	}
	if err := store.Delete("a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := store.Delete("missing"); err != nil {
		t.Fatalf("Delete() of unknown token error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}

	reopened, err := NewFileSessionStore(path)
	if err != nil {
		t.Fatalf("NewFileSessionStore() reopen error: %v", err)
	}
	all, err := reopened.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(all) != 1 || all[0].Token != "b" || !all[0].ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected sessions after reopen: %+v", all)
	}
}

func TestFileSessionStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := NewFileSessionStore(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFileSessionStoreRequiresPath(t *testing.T) {
	if _, err := NewFileSessionStore("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
