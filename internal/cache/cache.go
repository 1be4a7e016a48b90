// Package cache stores fetched remote documentation files in a local
// SQLite database keyed by repository, path and blob SHA, so unchanged
// files are not downloaded again.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the database file created inside a cache directory.
const FileName = "fetch.db"

type Cache struct {
	mu      sync.Mutex
	db      *sql.DB
	getStmt *sql.Stmt
	putStmt *sql.Stmt
	now     func() time.Time
}

// DefaultDir returns the per-user cache directory for gittydocs, honouring
// GITTYDOCS_CACHE_DIR when set.
func DefaultDir() string {
	if dir := os.Getenv("GITTYDOCS_CACHE_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "gittydocs")
	}
	return filepath.Join(os.TempDir(), "gittydocs-cache")
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	getStmt, err := db.Prepare(`SELECT content FROM files WHERE repo = ? AND path = ? AND sha = ?`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	putStmt, err := db.Prepare(`INSERT OR REPLACE INTO files (repo, path, sha, content, fetched_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = getStmt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return &Cache{db: db, getStmt: getStmt, putStmt: putStmt, now: time.Now}, nil
}

// OpenDir opens the cache database inside dir.
func OpenDir(dir string) (*Cache, error) {
	return Open(filepath.Join(dir, FileName))
}

// Get returns the cached content for repo/path when it was stored with the
// same sha.
func (c *Cache) Get(ctx context.Context, repo, path, sha string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var content []byte
	err := c.getStmt.QueryRowContext(ctx, repo, path, sha).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache %s/%s: %w", repo, path, err)
	}
	return content, true, nil
}

// Put stores content for repo/path, replacing any older revision.
func (c *Cache) Put(ctx context.Context, repo, path, sha string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if content == nil {
		content = []byte{}
	}
	if _, err := c.putStmt.ExecContext(ctx, repo, path, sha, content, c.now().Unix()); err != nil {
		return fmt.Errorf("write cache %s/%s: %w", repo, path, err)
	}
	return nil
}

// Clear removes cached files for repo, or every file when repo is empty.
// It returns the number of removed entries.
func (c *Cache) Clear(ctx context.Context, repo string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if repo == "" {
		res, err = c.db.ExecContext(ctx, `DELETE FROM files`)
	} else {
		res, err = c.db.ExecContext(ctx, `DELETE FROM files WHERE repo = ?`, repo)
	}
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// Len returns the number of cached files.
func (c *Cache) Len(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.getStmt.Close()
	_ = c.putStmt.Close()
	return c.db.Close()
}
