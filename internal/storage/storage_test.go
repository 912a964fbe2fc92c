package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	_, ok := m.GetItem("k")
	assert.False(t, ok)

	require.NoError(t, m.SetItem("k", "v"))
	v, ok := m.GetItem("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, m.RemoveItem("k"))
	_, ok = m.GetItem("k")
	assert.False(t, ok)
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetItem("accessToken", "tok"))
	require.NoError(t, f.SetItem("userData", `{"id":1}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	f2, err := NewFile(path)
	require.NoError(t, err)
	v, ok := f2.GetItem("accessToken")
	require.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, f2.RemoveItem("accessToken"))
	f3, err := NewFile(path)
	require.NoError(t, err)
	_, ok = f3.GetItem("accessToken")
	assert.False(t, ok)
	_, ok = f3.GetItem("userData")
	assert.True(t, ok)
}

func TestFileRemoveMissingKeyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.RemoveItem("missing"))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no write expected for a missing key")
}

func TestNewFileRequiresPath(t *testing.T) {
	_, err := NewFile("  ")
	assert.Error(t, err)
}

func TestNewFileRejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := NewFile(path)
	assert.Error(t, err)
}
