package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/artvc/art/internal/models"
)

// branchDenylist filters OS metadata names out of branch listings.
var branchDenylist = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
}

// LoadManifest reads a branch manifest. A missing manifest yields an
// empty commit list.
func (s *Store) LoadManifest(scope Scope, branch string) (*models.BranchManifest, error) {
	var manifest models.BranchManifest
	err := readJSON(filepath.Join(s.BranchDir(scope, branch), manifestFileName), &manifest)
	if os.IsNotExist(err) {
		return &models.BranchManifest{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// SaveManifest persists a branch manifest atomically, creating the
// branch directory if needed. Memoized states are dropped because the
// manifest decides what replay sees.
func (s *Store) SaveManifest(scope Scope, branch string, manifest *models.BranchManifest) error {
	dir := s.BranchDir(scope, branch)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create branch dir %s: %w", branch, err)
	}
	if manifest.Commits == nil {
		manifest.Commits = []string{}
	}
	if err := writeJSONAtomic(filepath.Join(dir, manifestFileName), manifest); err != nil {
		return err
	}
	s.InvalidateStates()
	return nil
}

// BranchExists reports whether a local branch manifest exists.
func (s *Store) BranchExists(branch string) bool {
	_, err := os.Stat(filepath.Join(s.BranchDir(ScopeLocal, branch), manifestFileName))
	return err == nil
}

// ListBranches returns local branch names, sorted, with OS metadata
// filenames filtered out.
func (s *Store) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(s.HistoryDir(ScopeLocal))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || branchDenylist[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// RemoveBranch deletes both the local and remote history of a branch.
func (s *Store) RemoveBranch(branch string) error {
	if err := removeAll(s.BranchDir(ScopeLocal, branch)); err != nil {
		return err
	}
	if err := removeAll(s.BranchDir(ScopeRemote, branch)); err != nil {
		return err
	}
	s.InvalidateStates()
	return nil
}
