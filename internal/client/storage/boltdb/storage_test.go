package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "client.db")
	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func TestNew(t *testing.T) {
	s := setupTestStorage(t)
	assert.NotNil(t, s.db)
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New(context.Background(), "/nonexistent/dir/client.db")
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "client.db")
	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	// Повторное открытие того же файла после Close должно работать
	s2, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}
