package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_rows (
    operation_id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    buy_quantity TEXT,
    buy_asset TEXT,
    buy_value TEXT,
    sell_quantity TEXT,
    sell_asset TEXT,
    sell_value TEXT,
    fee_quantity TEXT,
    fee_asset TEXT,
    fee_value TEXT,
    wallet TEXT,
    timestamp TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Store is the SQLite-backed ledger. operation_id is the primary key, so the
// dedup invariant is also enforced by the database.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load() ([]Row, error) {
	rows, err := s.db.Query(`
		SELECT operation_id, type,
			COALESCE(buy_quantity,''), COALESCE(buy_asset,''), COALESCE(buy_value,''),
			COALESCE(sell_quantity,''), COALESCE(sell_asset,''), COALESCE(sell_value,''),
			COALESCE(fee_quantity,''), COALESCE(fee_asset,''), COALESCE(fee_value,''),
			COALESCE(wallet,''), COALESCE(timestamp,'')
		FROM ledger_rows ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var typ string
		if err := rows.Scan(&r.OperationID, &typ,
			&r.Buy.Quantity, &r.Buy.Asset, &r.Buy.Value,
			&r.Sell.Quantity, &r.Sell.Asset, &r.Sell.Value,
			&r.Fee.Quantity, &r.Fee.Asset, &r.Fee.Value,
			&r.Wallet, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
		}
		r.Type = TxType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Append inserts the rows in one transaction. Rows whose operation_id is
// already stored are ignored.
func (s *Store) Append(rows []Row) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO ledger_rows (operation_id, type,
			buy_quantity, buy_asset, buy_value,
			sell_quantity, sell_asset, sell_value,
			fee_quantity, fee_asset, fee_value,
			wallet, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.OperationID, string(r.Type),
			nullable(r.Buy.Quantity), nullable(r.Buy.Asset), nullable(r.Buy.Value),
			nullable(r.Sell.Quantity), nullable(r.Sell.Asset), nullable(r.Sell.Value),
			nullable(r.Fee.Quantity), nullable(r.Fee.Asset), nullable(r.Fee.Value),
			nullable(r.Wallet), nullable(r.Timestamp)); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("insert %s: %w", r.OperationID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return s.Count()
}

func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ledger_rows").Scan(&n)
	return n, err
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
