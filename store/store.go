// Package store persists finished diagnoses so the daemon can re-serve and
// share them. Entries expire; an expired entry behaves as missing.
package store

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/pkg/errors"
)

// Entry is one stored diagnosis document.
type Entry struct {
	// ID is the share token the entry is retrieved by.
	ID        string
	URI       string
	CreatedAt time.Time
	Expires   time.Time
	// Document is the serialized diagnosis (JSON).
	Document []byte
}

// Store is the persistence interface for diagnosis documents.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores an entry, replacing any entry with the same ID.
	Put(Entry) error
	// Get returns the entry for the given ID. The boolean is false when
	// the entry does not exist or has expired.
	Get(id string) (Entry, bool, error)
	// Recent returns up to limit unexpired entries, newest first.
	Recent(limit int) ([]Entry, error)
	// Purge removes the entry for the given ID.
	Purge(id string) error
}

// SQLiteStore is a Store backed by a single SQLite file.
type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore opens (and if needed creates) the store with the given
// filename as the db. If the file name is empty, an in-memory db is used.
func NewSQLiteStore(filename string) (*SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening store db")
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS diagnoses (
		id TEXT PRIMARY KEY,
		uri TEXT,
		created_at INTEGER,
		expires INTEGER,
		document BLOB
	)`)
	if err != nil {
		return nil, errors.Wrap(err, "creating diagnoses table")
	}
	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS created_idx ON diagnoses (created_at)"); err != nil {
		return nil, errors.Wrap(err, "creating index")
	}
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errors.Wrap(err, "enabling WAL")
	}
	return &SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s *SQLiteStore) Put(e Entry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO diagnoses
		(id, uri, created_at, expires, document) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.URI, e.CreatedAt.Unix(), e.Expires.Unix(), e.Document)
	return err
}

func (s *SQLiteStore) Get(id string) (Entry, bool, error) {
	var e Entry
	var created, expires int64
	err := s.db.QueryRow(
		"SELECT id, uri, created_at, expires, document FROM diagnoses WHERE id = ?",
		id,
	).Scan(&e.ID, &e.URI, &created, &expires, &e.Document)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e.CreatedAt = time.Unix(created, 0)
	e.Expires = time.Unix(expires, 0)
	if time.Now().After(e.Expires) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *SQLiteStore) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`SELECT id, uri, created_at, expires, document
		FROM diagnoses WHERE expires > ? ORDER BY created_at DESC LIMIT ?`,
		time.Now().Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var created, expires int64
		if err := rows.Scan(&e.ID, &e.URI, &created, &expires, &e.Document); err != nil {
			return entries, err
		}
		e.CreatedAt = time.Unix(created, 0)
		e.Expires = time.Unix(expires, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Purge(id string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM diagnoses WHERE id = ?", id)
	return err
}
