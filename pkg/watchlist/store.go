// Package watchlist persists tokens to re-scan on a schedule and alerts on
// risk changes.
package watchlist

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chain-sentinel/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS watchlist (
	address      TEXT PRIMARY KEY,
	chain        TEXT NOT NULL,
	label        TEXT NOT NULL DEFAULT '',
	last_score   INTEGER NOT NULL DEFAULT -1,
	last_label   TEXT NOT NULL DEFAULT '',
	added_at     INTEGER NOT NULL,
	last_scan_at INTEGER NOT NULL DEFAULT 0
);
`

// Entry is one watched token. LastScore is -1 until the first scheduled
// scan completes.
type Entry struct {
	Address    string
	Chain      config.Chain
	Label      string
	LastScore  int
	LastLabel  string
	AddedAt    time.Time
	LastScanAt time.Time
}

type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init watchlist schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Add registers a token; re-adding updates the chain and label in place.
func (s *Store) Add(address string, chain config.Chain, label string) error {
	_, err := s.db.Exec(`
		INSERT INTO watchlist (address, chain, label, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET chain = excluded.chain, label = excluded.label`,
		address, string(chain), label, time.Now().Unix())
	return err
}

func (s *Store) Remove(address string) error {
	res, err := s.db.Exec(`DELETE FROM watchlist WHERE address = ?`, address)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("not on watchlist: %s", address)
	}
	return nil
}

func (s *Store) Get(address string) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT address, chain, label, last_score, last_label, added_at, last_scan_at
		FROM watchlist WHERE address = ?`, address)
	return scanEntry(row)
}

func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT address, chain, label, last_score, last_label, added_at, last_scan_at
		FROM watchlist ORDER BY added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// UpdateScore records the latest scan result for a watched token.
func (s *Store) UpdateScore(address string, score int, label string) error {
	_, err := s.db.Exec(`
		UPDATE watchlist SET last_score = ?, last_label = ?, last_scan_at = ?
		WHERE address = ?`,
		score, label, time.Now().Unix(), address)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var chainStr string
	var addedAt, lastScanAt int64
	if err := row.Scan(&e.Address, &chainStr, &e.Label, &e.LastScore, &e.LastLabel,
		&addedAt, &lastScanAt); err != nil {
		return nil, err
	}
	e.Chain = config.Chain(chainStr)
	e.AddedAt = time.Unix(addedAt, 0)
	if lastScanAt > 0 {
		e.LastScanAt = time.Unix(lastScanAt, 0)
	}
	return &e, nil
}
