package core

import (
	"encoding/base64"
	"fmt"

	"github.com/artvc/art/internal/delta"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// StateAt reconstructs the file map of a branch at targetHash by
// replaying the commit chain over the root snapshot. An empty hash
// returns the root state. Results are memoized on the store handle.
func StateAt(st *store.Store, branch, targetHash string) (map[string]string, error) {
	key := branch + "@" + targetHash
	if state, ok := st.CachedState(key); ok {
		return state, nil
	}

	files, err := st.LoadRoot()
	if err != nil {
		return nil, fmt.Errorf("load root snapshot: %w", err)
	}
	state := make(map[string]string, len(files))
	for _, f := range files {
		if f.Binary {
			raw, err := base64.StdEncoding.DecodeString(f.Content)
			if err != nil {
				return nil, fmt.Errorf("decode root entry %s: %w", f.Path, err)
			}
			state[f.Path] = string(raw)
			continue
		}
		state[f.Path] = f.Content
	}

	if targetHash == "" {
		st.PutState(key, state)
		return state, nil
	}

	manifest, err := st.LoadManifest(store.ScopeLocal, branch)
	if err != nil {
		return nil, err
	}
	for _, h := range manifest.Commits {
		commit, err := st.ReadCommit(store.ScopeLocal, branch, h)
		if err != nil {
			return nil, err
		}
		changes, err := st.ReadCommitChanges(store.ScopeLocal, branch, commit)
		if err != nil {
			return nil, err
		}
		if err := ApplyChanges(state, changes); err != nil {
			return nil, fmt.Errorf("replay commit %s: %w", h, err)
		}
		if h == targetHash {
			break
		}
	}

	st.PutState(key, state)
	return state, nil
}

// ActiveState reconstructs the state at the head of the active branch.
func ActiveState(st *store.Store) (map[string]string, error) {
	head, err := st.Head()
	if err != nil {
		return nil, err
	}
	return StateAt(st, head.Active.Branch, head.Active.Parent)
}

// ApplyChanges folds one change set into a file map.
func ApplyChanges(state map[string]string, changes *models.ChangeSet) error {
	for _, path := range changes.Keys() {
		ch, _ := changes.Get(path)
		switch ch.Kind {
		case models.ChangeCreate:
			content, err := DecodeContent(ch)
			if err != nil {
				return fmt.Errorf("entry %s: %w", path, err)
			}
			state[path] = content
		case models.ChangeDelete:
			delete(state, path)
		case models.ChangeOps:
			state[path] = delta.Apply(state[path], ch.Ops)
		}
	}
	return nil
}

// DecodeContent returns the raw file content of a create entry,
// decoding base64 for binary creates.
func DecodeContent(ch models.Change) (string, error) {
	if !ch.Binary {
		return ch.Content, nil
	}
	raw, err := base64.StdEncoding.DecodeString(ch.Content)
	if err != nil {
		return "", fmt.Errorf("decode binary content: %w", err)
	}
	return string(raw), nil
}
