package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_ConnOpensAndMigrates(t *testing.T) {
	h := NewHandle(Config{Path: filepath.Join(t.TempDir(), "data.db")})
	t.Cleanup(func() { _ = h.Close() })

	db, err := h.Conn(context.Background())
	require.NoError(t, err)

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('books', 'friends', 'lendings', 'users')`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	again, err := h.Conn(context.Background())
	require.NoError(t, err)
	assert.Same(t, db, again)
}

func TestHandle_ConcurrentCallersShareOneAttempt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	var opens atomic.Int32
	release := make(chan struct{})

	h := NewHandle(Config{Path: path})
	h.open = func(cfg Config) (*sql.DB, error) {
		opens.Add(1)
		<-release
		return openAndMigrate(cfg)
	}
	t.Cleanup(func() { _ = h.Close() })

	const callers = 16
	results := make([]*sql.DB, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := h.Conn(context.Background())
			assert.NoError(t, err)
			results[i] = db
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), opens.Load())
	for _, db := range results {
		assert.Same(t, results[0], db)
	}
}

func TestHandle_FailedAttemptIsRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	var calls int
	h := NewHandle(Config{Path: path})
	h.open = func(cfg Config) (*sql.DB, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return openAndMigrate(cfg)
	}
	t.Cleanup(func() { _ = h.Close() })

	_, err := h.Conn(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect store")

	db, err := h.Conn(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, 2, calls)
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "data.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}
