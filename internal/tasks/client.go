// Package tasks runs background maintenance jobs for the library on a
// backlite queue persisted in its own SQLite file, so jobs survive restarts
// and never compete with request traffic for the catalog database.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

const remoteFallbackDB = "./bookshelf-tasks.db"

// Config tunes the worker pool.
type Config struct {
	Workers         int
	ReleaseAfter    time.Duration // a claimed task is handed out again after this long
	CleanupInterval time.Duration // how often expired task rows are purged
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// DefaultDBPath places the queue next to a SQLite catalog
// ("library.db" -> "library-tasks.db"). A remote catalog, or none, falls back
// to ./bookshelf-tasks.db.
func DefaultDBPath(catalogDSN string, remote bool) string {
	if remote || catalogDSN == "" {
		return remoteFallbackDB
	}
	path := strings.TrimPrefix(catalogDSN, "file:")
	path, _, _ = strings.Cut(path, "?")

	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-tasks" + ext
}

// Client owns the queue database and its workers.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	running atomic.Bool
}

// NewClient opens (creating if needed) the queue database at dbPath and
// installs the backlite schema. Register queues before calling Start.
func NewClient(dbPath string, cfg Config) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.ReleaseAfter <= 0 {
		cfg.ReleaseAfter = defaults.ReleaseAfter
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	db, err := openQueueDB(dbPath, cfg.Workers)
	if err != nil {
		return nil, err
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          taskLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers}, nil
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database %s: %w", path, err)
	}
	// Workers plus a few connections for enqueueing from request handlers
	db.SetMaxOpenConns(workers + 4)
	db.SetMaxIdleConns(workers)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers and returns. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[TASK] Queue started with %d workers", c.workers)
	c.queue.Start(ctx)
}

// Stop waits for running tasks until ctx expires. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.Load() {
		return true
	}
	finished := c.queue.Stop(ctx)
	if finished {
		log.Printf("[TASK] Queue stopped")
	} else {
		log.Printf("[TASK] Queue stop timed out; unfinished tasks will be released on next start")
	}
	return finished
}

// Ping checks that the queue database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the queue database. Call Stop first.
func (c *Client) Close() error {
	return c.db.Close()
}

// EnqueueTagCleanup queues an orphan tag sweep for deviceID, or for every
// device when deviceID is empty, and returns the task id.
func (c *Client) EnqueueTagCleanup(deviceID string) (string, error) {
	ids, err := c.queue.Add(CleanupOrphanTagsTask{DeviceID: deviceID}).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue tag cleanup: %w", err)
	}
	if len(ids) != 1 {
		return "", errors.New("enqueue tag cleanup: backlite returned no task id")
	}
	return ids[0], nil
}

type taskLogger struct{}

func (taskLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (taskLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
