package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/artvc/art/internal/models"
)

var (
	bucketBranches = []byte("branches")
	bucketCommits  = []byte("commits")
	bucketRoot     = []byte("root")
)

var rootKey = []byte("snapshot")

// BboltStore implements MetaStore using bbolt.
type BboltStore struct {
	db *bolt.DB
}

// NewBboltStore opens or creates a bbolt database at the given path.
func NewBboltStore(dbPath string) (*BboltStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create meta directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open meta database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBranches, bucketCommits, bucketRoot} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BboltStore{db: db}, nil
}

// Close releases the bbolt database.
func (s *BboltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListBranches returns the stored branch names in key order.
func (s *BboltStore) ListBranches() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBranches).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// GetBranch retrieves a branch manifest. Returns ErrNotFound if missing.
func (s *BboltStore) GetBranch(name string) (*models.BranchManifest, error) {
	var manifest models.BranchManifest
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketBranches).Get([]byte(name))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &manifest)
	})
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// UpdateBranch replaces a branch manifest with a compare-and-swap on
// its current tip.
func (s *BboltStore) UpdateBranch(name string, manifest *models.BranchManifest, expectedTip string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBranches)

		currentTip := ""
		if data := b.Get([]byte(name)); data != nil {
			var current models.BranchManifest
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("parse stored manifest: %w", err)
			}
			currentTip = current.Tip()
		}
		if currentTip != expectedTip {
			return ErrTipMismatch
		}

		data, err := json.Marshal(manifest)
		if err != nil {
			return fmt.Errorf("marshal manifest: %w", err)
		}
		return b.Put([]byte(name), data)
	})
}

// HasCommit checks if a commit record exists.
func (s *BboltStore) HasCommit(hash string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(bucketCommits).Get([]byte(hash)) != nil
		return nil
	})
	return exists, err
}

// GetCommit retrieves a commit record. Returns ErrNotFound if missing.
func (s *BboltStore) GetCommit(hash string) (*CommitRecord, error) {
	var rec CommitRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCommits).Get([]byte(hash))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutCommit stores a commit record, leaving an existing hash untouched.
func (s *BboltStore) PutCommit(hash string, rec *CommitRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCommits)
		if b.Get([]byte(hash)) != nil {
			return nil
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal commit record: %w", err)
		}
		return b.Put([]byte(hash), data)
	})
}

// GetRoot retrieves the root snapshot record.
func (s *BboltStore) GetRoot() (*RootRecord, error) {
	var rec RootRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRoot).Get(rootKey)
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutRoot stores the root snapshot record. The root is written once
// per repository; later writes are ignored.
func (s *BboltStore) PutRoot(rec *RootRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRoot)
		if b.Get(rootKey) != nil {
			return nil
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal root record: %w", err)
		}
		return b.Put(rootKey, data)
	})
}

// Counts returns branch and commit totals.
func (s *BboltStore) Counts() (int, int, error) {
	var branches, commits int
	err := s.db.View(func(tx *bolt.Tx) error {
		branches = tx.Bucket(bucketBranches).Stats().KeyN
		commits = tx.Bucket(bucketCommits).Stats().KeyN
		return nil
	})
	return branches, commits, err
}
