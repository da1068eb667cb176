package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIsVisibleImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.txt")

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Record("https://example.com/a.jpg"))

	// Read through a separate handle before Close
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.jpg\n", string(data))

	require.NoError(t, l.Record("https://example.com/b.jpg"))
	urls, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}, urls)
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://old.example/x\n"), 0644))

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record("https://new.example/y"))
	require.NoError(t, l.Close())

	urls, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://old.example/x", "https://new.example/y"}, urls)
}

func TestRecordAfterClose(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "failed.txt"))
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.Error(t, l.Record("https://example.com"))
}

func TestOpenInMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "failed.txt"))
	assert.Error(t, err)
}
