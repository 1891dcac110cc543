// Package metastore stores the served-side metadata of a repository:
// branch manifests, commit masters, and the root snapshot index.
package metastore

import (
	"encoding/json"
	"errors"

	"github.com/artvc/art/internal/models"
)

// ErrNotFound marks a missing branch, commit, or root record.
var ErrNotFound = errors.New("not found")

// ErrTipMismatch marks a failed compare-and-swap branch update.
var ErrTipMismatch = errors.New("branch tip mismatch")

// CommitRecord is a stored commit: the raw master document plus the
// blob hash of each part payload.
type CommitRecord struct {
	Master     json.RawMessage   `json:"master"`
	PartHashes map[string]string `json:"part_hashes"`
}

// RootRecord is the stored root snapshot index: ordered part names
// plus each part's blob hash.
type RootRecord struct {
	Manifest   []string          `json:"manifest"`
	PartHashes map[string]string `json:"part_hashes"`
}

// MetaStore is the metadata contract of one served repository.
type MetaStore interface {
	ListBranches() ([]string, error)
	GetBranch(name string) (*models.BranchManifest, error)
	// UpdateBranch replaces a branch manifest iff the stored tip equals
	// expectedTip (empty for a new branch).
	UpdateBranch(name string, manifest *models.BranchManifest, expectedTip string) error

	HasCommit(hash string) (bool, error)
	GetCommit(hash string) (*CommitRecord, error)
	// PutCommit stores a commit record. Idempotent: an existing hash is
	// left untouched.
	PutCommit(hash string, rec *CommitRecord) error

	GetRoot() (*RootRecord, error)
	PutRoot(rec *RootRecord) error

	Counts() (branches, commits int, err error)
	Close() error
}
