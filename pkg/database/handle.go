package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Handle is the process-wide store connection. The first Conn call opens
// and migrates the database; callers arriving while that attempt is in
// flight wait for it instead of opening a second connection. A failed
// attempt is not cached, so the next caller tries again.
type Handle struct {
	cfg  Config
	open func(Config) (*sql.DB, error)

	mu    sync.Mutex
	db    *sql.DB
	group singleflight.Group
}

func NewHandle(cfg Config) *Handle {
	return &Handle{cfg: cfg, open: openAndMigrate}
}

func openAndMigrate(cfg Config) (*sql.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (h *Handle) Conn(ctx context.Context) (*sql.DB, error) {
	if db := h.current(); db != nil {
		return db, nil
	}

	ch := h.group.DoChan("connect", func() (any, error) {
		if db := h.current(); db != nil {
			return db, nil
		}
		db, err := h.open(h.cfg)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		h.db = db
		h.mu.Unlock()
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("connect store: %w", res.Err)
		}
		return res.Val.(*sql.DB), nil
	}
}

// Ping checks the store, connecting first if needed.
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.Conn(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (h *Handle) Path() string {
	return h.cfg.Path
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

func (h *Handle) current() *sql.DB {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db
}
