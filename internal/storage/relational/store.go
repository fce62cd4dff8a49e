package relational

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
	"sync"

	_ "modernc.org/sqlite"
)

// Name identifies the adapter in logs, metrics and the health endpoint.
const Name = "relational"

const memoryPath = ":memory:"

var pragmas = []string{
	"PRAGMA foreign_keys = OFF",
	"PRAGMA busy_timeout = 5000",
}

// Store keeps the three record kinds in SQLite tables.
type Store struct {
	path   string
	logger providers.Logger

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

func New(path string, logger providers.Logger) *Store {
	if path == "" {
		path = memoryPath
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Driver() string {
	return Name
}

// Open is idempotent: the first successful call creates the schema, later
// calls return immediately.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.ErrClosed
	}
	if s.db != nil {
		return nil
	}

	if s.path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", s.path, err)
	}
	// one handle for the whole process; an in-memory database only exists
	// on the connection that created it
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range append(pragmas, models.SchemaStatements...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("prepare schema: %w", err)
		}
	}

	s.db = db
	s.logger.Infof(providers.TypeStorage, "Relational store opened at %s", s.path)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.logger.Infof(providers.TypeStorage, "Relational store closed")
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, models.ErrClosed
	}
	if s.db == nil {
		return nil, models.ErrNotInitialized
	}
	return s.db, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
