package db

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrCorruptLedger is returned by Load when the persisted ledger exists but
// cannot be parsed. Callers treat it as an empty ledger.
var ErrCorruptLedger = errors.New("ledger file is corrupt")

// Ledger is the persisted, row-oriented store of classified transactions.
// It assumes a single writer for the duration of a run.
type Ledger interface {
	// Load reads the whole ledger from durable storage. A missing or empty
	// ledger yields no rows and no error.
	Load() ([]Row, error)
	// Append merges rows into the ledger, persists it and returns the
	// number of rows now stored.
	Append(rows []Row) (int, error)
	Close() error
}

// Open picks the backend from the path: .db/.sqlite/.sqlite3 files get the
// SQLite store, anything else is a CSV file.
func Open(path string) (Ledger, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewStore(path)
	default:
		return NewCSVLedger(path), nil
	}
}
