package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "sub", "cache.bolt"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_PutGet(t *testing.T) {
	s := setupStore(t, time.Hour)

	_, hit, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.Put("ug:cocaine", []byte("<html>")))

	body, hit, err := s.Get("ug:cocaine")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("<html>"), body)

	require.NoError(t, s.Put("ug:cocaine", []byte("newer")))
	body, _, _ = s.Get("ug:cocaine")
	assert.Equal(t, []byte("newer"), body)
}

func TestStore_Expiry(t *testing.T) {
	s := setupStore(t, time.Minute)

	now := time.Date(2025, 3, 7, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put("a", []byte("1")))

	now = now.Add(30 * time.Second)
	require.NoError(t, s.Put("b", []byte("2")))

	now = now.Add(45 * time.Second)

	_, hit, err := s.Get("a")
	require.NoError(t, err)
	assert.False(t, hit, "a is older than the TTL")

	_, hit, err = s.Get("b")
	require.NoError(t, err)
	assert.True(t, hit)

	n, err := s.Purge()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Purge()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	s := setupStore(t, 0)

	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put("k", []byte("v")))

	now = now.AddDate(5, 0, 0)

	_, hit, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, hit)

	n, err := s.Purge()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.bolt")

	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(path, 0)
	require.NoError(t, err)
	defer s.Close()

	body, hit, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("v"), body)
}
