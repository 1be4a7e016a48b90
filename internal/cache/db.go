package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema is additive: the cache survives upgrades and a stale row is simply
// refetched when its SHA no longer matches.
const schema = `
CREATE TABLE IF NOT EXISTS files (
	repo TEXT NOT NULL,
	path TEXT NOT NULL,
	sha TEXT NOT NULL,
	content BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (repo, path)
);

CREATE INDEX IF NOT EXISTS files_repo ON files(repo);
`

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}
