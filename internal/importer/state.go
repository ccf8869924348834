package importer

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

// FileKey identifies one export file by name, size, and content hash. A
// file whose key changes (re-export, edit) is treated as new.
type FileKey struct {
	Path string
	Size int64
	Hash string
}

// KeyFile builds the FileKey for an export file on disk.
func KeyFile(path string) (FileKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileKey{}, fmt.Errorf("stat: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return FileKey{}, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return FileKey{}, err
	}

	return FileKey{
		Path: filepath.Base(path),
		Size: info.Size(),
		Hash: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// StateDB tracks which export files have already been sent so reruns only
// push new or changed files.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS imported_files (
		path        TEXT PRIMARY KEY,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Seen reports whether a file with this exact key was already sent.
func (s *StateDB) Seen(k FileKey) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM imported_files WHERE path = ? AND size = ? AND hash = ?`,
		k.Path, k.Size, k.Hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record stores a key after its file was successfully sent, replacing any
// previous key for the same path.
func (s *StateDB) Record(k FileKey) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO imported_files (path, size, hash) VALUES (?, ?, ?)`,
		k.Path, k.Size, k.Hash,
	)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
