// Package state remembers which files already passed a round-trip check so
// batch validation can skip them.
package state

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the SQLite store of validated files.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the state database at dir/state.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS validated_files (
		path         TEXT PRIMARY KEY,
		size         INTEGER NOT NULL,
		hash         TEXT NOT NULL,
		format       TEXT NOT NULL,
		policy       TEXT NOT NULL DEFAULT '',
		validated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &DB{db: db}, nil
}

// IsValidated reports whether the file passed under the same policy with the
// same size and hash.
func (s *DB) IsValidated(relPath string, size int64, hash, policy string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM validated_files WHERE path = ? AND size = ? AND hash = ? AND policy = ?`,
		relPath, size, hash, policy,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", relPath, err)
	}
	return count > 0, nil
}

// MarkValidated records that a file passed its round trip.
func (s *DB) MarkValidated(relPath string, size int64, hash, format, policy string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO validated_files (path, size, hash, format, policy) VALUES (?, ?, ?, ?, ?)`,
		relPath, size, hash, format, policy,
	)
	if err != nil {
		return fmt.Errorf("marking %s: %w", relPath, err)
	}
	return nil
}

// Forget drops a file's record, so a file that stopped passing is checked again.
func (s *DB) Forget(relPath string) error {
	if _, err := s.db.Exec(`DELETE FROM validated_files WHERE path = ?`, relPath); err != nil {
		return fmt.Errorf("forgetting %s: %w", relPath, err)
	}
	return nil
}

// Close closes the state database.
func (s *DB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
