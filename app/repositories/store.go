package repositories

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Store owns the Badger database that holds every document.
type Store struct {
	db       *badger.DB
	mutex    sync.Mutex
	dbPath   string
	isTestDB bool
}

// NewStore opens the database at path. An empty path or "test_db" opens an
// isolated temporary database that is removed on Close.
func NewStore(path string) (*Store, error) {
	isTest := false
	if path == "" || path == "test_db" {
		tempPath, err := os.MkdirTemp("", "inkfeed_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	if isTest {
		opts = opts.
			WithSyncWrites(false).
			WithNumVersionsToKeep(1).
			WithNumGoroutines(1)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}

	return &Store{
		db:       db,
		dbPath:   path,
		isTestDB: isTest,
	}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *badger.DB { return s.db }

// Path returns the directory the database lives in.
func (s *Store) Path() string { return s.dbPath }

// Posts returns a post repository backed by this store.
func (s *Store) Posts() *BadgerPostRepository {
	return NewBadgerPostRepository(s.db)
}

// Users returns a user repository backed by this store.
func (s *Store) Users() *BadgerUserRepository {
	return NewBadgerUserRepository(s.db)
}

// Backup writes a full backup of the database to w.
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup.
func (s *Store) Restore(r io.Reader) error {
	if err := s.db.Load(r, 4); err != nil {
		return fmt.Errorf("restore database: %w", err)
	}
	return nil
}

// Clear drops every key.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Close(); err != nil {
		return err
	}

	// Clean up test database
	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}
