package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersister_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auth-storage.json")
	p := NewFilePersister(path)

	snap, err := p.Load()
	require.NoError(t, err)
	assert.False(t, snap.IsAuthenticated, "missing file is an empty snapshot")

	require.NoError(t, p.Save(Snapshot{User: student, IsAuthenticated: true}))

	snap, err = p.Load()
	require.NoError(t, err)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, student, snap.User)

	require.NoError(t, p.Clear())
	require.NoError(t, p.Clear(), "clearing twice is fine")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFilePersister_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth-storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	snap, err := NewFilePersister(path).Load()
	require.NoError(t, err)
	assert.Nil(t, snap.User)
}
