// Package store persists every repository structure under the .art
// metadata directory: head state, root snapshot, branch histories,
// the stage, and stashes. All structures share one paginated
// manifest-plus-parts layout of pretty-printed JSON files.
//
// A Store is not safe for concurrent use; the repository is owned by
// a single writer for the duration of any operation.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

const stateCacheSize = 16

// Store is a handle on one repository's .art directory.
type Store struct {
	root string // path to the .art directory

	// states caches reconstructed file maps keyed by "branch@hash".
	// Purged whenever a branch manifest mutates.
	states *lru.Cache[string, map[string]string]
}

// Open returns a store rooted at the given .art directory. The
// directory is not required to exist yet (init creates it).
func Open(artPath string) (*Store, error) {
	states, err := lru.New[string, map[string]string](stateCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create state cache: %w", err)
	}
	return &Store{root: artPath, states: states}, nil
}

// ArtPath returns the path to the .art directory.
func (s *Store) ArtPath() string {
	return s.root
}

// CachedState returns a copy of a memoized reconstructed state.
func (s *Store) CachedState(key string) (map[string]string, bool) {
	state, ok := s.states.Get(key)
	if !ok {
		return nil, false
	}
	return cloneState(state), true
}

// PutState memoizes a reconstructed state under the given key.
func (s *Store) PutState(key string, state map[string]string) {
	s.states.Add(key, cloneState(state))
}

// InvalidateStates drops every memoized state. Called after any
// mutation of a branch manifest or its commit files.
func (s *Store) InvalidateStates() {
	s.states.Purge()
}

func cloneState(state map[string]string) map[string]string {
	out := make(map[string]string, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}

// removeAll deletes a directory tree, tolerating absence.
func removeAll(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", filepath.Base(dir), err)
	}
	return nil
}
