package tokenstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/catalog-panel/internal/model"
	"catalogadmin/catalog-panel/internal/storage"
)

func TestWriteAndRead(t *testing.T) {
	mem := storage.NewMemory()
	s := New(mem, "")

	require.NoError(t, s.Write("tok", UserData{Profile: model.Profile{ID: 1, Name: "A"}, Role: "admin"}))

	token, ok := s.ReadToken()
	require.True(t, ok)
	assert.Equal(t, "tok", token)

	raw, ok := mem.GetItem(DefaultTokenKey)
	require.True(t, ok)
	assert.Equal(t, "tok", raw)

	u, ok := s.CachedUser()
	require.True(t, ok)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "admin", u.Role)

	raw, ok = mem.GetItem(ProfileKey)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":1,"name":"A","email":"","phone":"","document":"","role":"admin"}`, raw)
}

func TestReadTokenAbsentClearsProfileCache(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(ProfileKey, `{"id":7}`))
	s := New(mem, "custom")

	_, ok := s.ReadToken()
	assert.False(t, ok)

	_, ok = mem.GetItem(ProfileKey)
	assert.False(t, ok, "stale profile cache should be removed")
}

func TestCustomTokenKey(t *testing.T) {
	mem := storage.NewMemory()
	s := New(mem, "panelToken")
	require.NoError(t, s.Write("abc", UserData{}))

	_, ok := mem.GetItem(DefaultTokenKey)
	assert.False(t, ok)
	v, ok := mem.GetItem("panelToken")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestClearRemovesBoth(t *testing.T) {
	mem := storage.NewMemory()
	s := New(mem, "")
	require.NoError(t, s.Write("tok", UserData{Profile: model.Profile{ID: 1}}))

	require.NoError(t, s.Clear())

	_, ok := mem.GetItem(DefaultTokenKey)
	assert.False(t, ok)
	_, ok = mem.GetItem(ProfileKey)
	assert.False(t, ok)

	require.NoError(t, s.Clear())
}

// failingUserCache rejects writes of the user cache entry only.
type failingUserCache struct {
	*storage.Memory
}

func (f failingUserCache) SetItem(key, value string) error {
	if key == ProfileKey {
		return errors.New("quota exceeded")
	}
	return f.Memory.SetItem(key, value)
}

func TestWriteFailureLeavesNeitherEntry(t *testing.T) {
	mem := storage.NewMemory()
	s := New(failingUserCache{mem}, "")

	err := s.Write("tok", UserData{Profile: model.Profile{ID: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, ok := mem.GetItem(DefaultTokenKey)
	assert.False(t, ok, "token must not outlive a failed user cache write")
	_, ok = s.ReadToken()
	assert.False(t, ok)
}

func TestCachedUserIgnoresCorruptEntry(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(ProfileKey, "{broken"))

	_, ok := New(mem, "").CachedUser()
	assert.False(t, ok)
}
