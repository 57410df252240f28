// Package sqlite keeps an embedding table on disk so that tables larger than
// memory can be mapped, and so a table loaded once can be reused across runs.
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	_ "modernc.org/sqlite"

	"termvec/internal/domain"
)

// Storage implements domain.Storage on a SQLite database file.
type Storage struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	tx     *sql.Tx
	exists *sql.Stmt
	insert *sql.Stmt
	sealed bool
	// source identifies the table file of the sealed build; pending is
	// written on the next Seal.
	source  string
	pending string
}

// Open opens or creates the table database at path. A database sealed by an
// earlier run opens sealed and can be read straight away.
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open table db: %w", err)
	}
	// builds run inside a single transaction; reads must share its connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Storage{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	sealed, err := s.meta("sealed")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read seal state: %w", err)
	}
	s.sealed = sealed == "1"
	if s.source, err = s.meta("source"); err != nil {
		db.Close()
		return nil, fmt.Errorf("read table source: %w", err)
	}
	return s, nil
}

func (s *Storage) meta(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM table_meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Storage) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS embeddings (
			word TEXT PRIMARY KEY,
			vector BLOB NOT NULL
		);

		CREATE TABLE IF NOT EXISTS table_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *Storage) Path() string { return s.path }

// Reset empties the table and clears the seal so it can be rebuilt.
func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rollback(); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM embeddings; DELETE FROM table_meta;"); err != nil {
		return fmt.Errorf("reset table: %w", err)
	}
	s.sealed = false
	s.source, s.pending = "", ""
	return nil
}

// SetSource records the table file being loaded. It is stored by Seal and
// reported by Source in later runs.
func (s *Storage) SetSource(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return domain.ErrSealed
	}
	s.pending = source
	return nil
}

// Source returns the source recorded with the sealed table, or "" if none.
func (s *Storage) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Storage) begin() error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin build: %w", err)
	}
	exists, err := tx.Prepare(`SELECT 1 FROM embeddings WHERE word = ?`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare lookup: %w", err)
	}
	insert, err := tx.Prepare(`INSERT OR REPLACE INTO embeddings (word, vector) VALUES (?, ?)`)
	if err != nil {
		exists.Close()
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	s.tx, s.exists, s.insert = tx, exists, insert
	return nil
}

func (s *Storage) rollback() error {
	if s.tx == nil {
		return nil
	}
	s.exists.Close()
	s.insert.Close()
	err := s.tx.Rollback()
	s.tx, s.exists, s.insert = nil, nil, nil
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback build: %w", err)
	}
	return nil
}

func (s *Storage) Put(word string, vec domain.Vector) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false, domain.ErrSealed
	}
	if err := s.begin(); err != nil {
		return false, err
	}

	var one int
	replaced := true
	if err := s.exists.QueryRow(word).Scan(&one); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("check word %q: %w", word, err)
		}
		replaced = false
	}
	if _, err := s.insert.Exec(word, encodeVector(vec)); err != nil {
		return false, fmt.Errorf("failed to insert %q: %w", word, err)
	}
	return replaced, nil
}

// Seal commits the build and marks the database as complete.
func (s *Storage) Seal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return nil
	}
	if err := s.begin(); err != nil {
		return err
	}
	if _, err := s.tx.Exec(`INSERT OR REPLACE INTO table_meta (key, value) VALUES ('sealed', '1')`); err != nil {
		return fmt.Errorf("mark sealed: %w", err)
	}
	if _, err := s.tx.Exec(`INSERT OR REPLACE INTO table_meta (key, value) VALUES ('source', ?)`, s.pending); err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	s.exists.Close()
	s.insert.Close()
	err := s.tx.Commit()
	s.tx, s.exists, s.insert = nil, nil, nil
	if err != nil {
		return fmt.Errorf("commit build: %w", err)
	}
	s.sealed = true
	s.source, s.pending = s.pending, ""
	return nil
}

func (s *Storage) Sealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sealed
}

func (s *Storage) Lookup(word string) (domain.Vector, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var blob []byte
	err := s.queryRow(`SELECT vector FROM embeddings WHERE word = ?`, word).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %q: %w", word, err)
	}
	vec, err := decodeVector(blob)
	if err != nil {
		return nil, false, fmt.Errorf("decode %q: %w", word, err)
	}
	return vec, true, nil
}

func (s *Storage) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	if err := s.queryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}

func (s *Storage) queryRow(query string, args ...any) *sql.Row {
	if s.tx != nil {
		return s.tx.QueryRow(query, args...)
	}
	return s.db.QueryRow(query, args...)
}

// Close rolls back an unsealed build and closes the database.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	rerr := s.rollback()
	err := s.db.Close()
	s.db = nil
	if rerr != nil {
		return rerr
	}
	return err
}

// Vectors are stored as little-endian float64 words.
func encodeVector(v domain.Vector) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) (domain.Vector, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("vector blob has %d bytes, not a multiple of 8", len(b))
	}
	v := make(domain.Vector, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return v, nil
}
