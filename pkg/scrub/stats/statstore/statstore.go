// Package statstore persists collected corpus statistics in SQLite so a
// re-run over an unchanged corpus can skip the collection pass. The
// snapshot is keyed by a corpus fingerprint; any change to the input
// files misses the cache.
package statstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dialogkit/scrub/pkg/scrub/stats"
)

// Store is a SQLite-backed snapshot cache.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database with WAL mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
	fingerprint TEXT PRIMARY KEY,
	dialogues INTEGER NOT NULL,
	malformed INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_counts (
	fingerprint TEXT NOT NULL,
	kind TEXT NOT NULL,
	key TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(fingerprint, kind, key)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Save stores snap under the fingerprint, replacing any previous entry.
func (s *Store) Save(ctx context.Context, fingerprint string, snap *stats.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshot_counts WHERE fingerprint = ?", fingerprint); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (fingerprint, dialogues, malformed, created_at)
		 VALUES (?, ?, ?, ?)`,
		fingerprint, snap.Dialogues(), snap.Malformed(),
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO snapshot_counts (fingerprint, kind, key, count) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insErr error
	snap.Each(func(kind, key string, count int64) {
		if insErr != nil {
			return
		}
		_, insErr = stmt.ExecContext(ctx, fingerprint, kind, key, count)
	})
	if insErr != nil {
		return insErr
	}

	return tx.Commit()
}

// Load returns the cached snapshot for the fingerprint, if present.
func (s *Store) Load(ctx context.Context, fingerprint string) (*stats.Snapshot, bool, error) {
	var dialogues, malformed int64
	err := s.db.QueryRowContext(ctx,
		"SELECT dialogues, malformed FROM snapshots WHERE fingerprint = ?",
		fingerprint).Scan(&dialogues, &malformed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, key, count FROM snapshot_counts WHERE fingerprint = ?",
		fingerprint)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	contexts := map[string]int64{}
	uses := map[string]int64{}
	phrases := map[string]int64{}
	for rows.Next() {
		var kind, key string
		var count int64
		if err := rows.Scan(&kind, &key, &count); err != nil {
			return nil, false, err
		}
		switch kind {
		case "context":
			contexts[key] = count
		case "use":
			uses[key] = count
		case "phrase":
			phrases[key] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	return stats.NewSnapshot(dialogues, malformed, contexts, uses, phrases), true, nil
}

// Fingerprint hashes the identity of the corpus: each partition's
// relative path, size, and mtime. Content is not read; a touched file
// invalidates the cache, which errs on the safe side.
func Fingerprint(dir string, partitions []string) (string, error) {
	h := sha256.New()
	for _, rel := range partitions {
		st, err := os.Stat(filepath.Join(dir, rel))
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", rel, err)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", rel, st.Size(), st.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
