package core

import (
	"fmt"
	"os"
	"sort"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/store"
)

// CheckoutOptions configures checkout behavior.
type CheckoutOptions struct {
	Force bool // skip the dirty-tree check and overwrite unconditionally
}

// CheckoutResult contains the outcome of a checkout.
type CheckoutResult struct {
	Branch       string
	Commit       string
	Created      bool // branch was implicitly created
	FilesWritten int
	FilesRemoved int
}

// Checkout switches the working tree to another branch. A missing
// target branch is implicitly created from the active branch. Without
// Force, a dirty working tree aborts the switch.
func Checkout(cfg *config.Config, st *store.Store, target string, opts CheckoutOptions) (*CheckoutResult, error) {
	head, err := st.Head()
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{Branch: target}
	if !st.BranchExists(target) {
		if err := CreateBranch(cfg, st, target); err != nil {
			return nil, err
		}
		result.Created = true
	}

	currentState, err := StateAt(st, head.Active.Branch, head.Active.Parent)
	if err != nil {
		return nil, err
	}
	if !opts.Force {
		dirty, err := isDirty(cfg, currentState)
		if err != nil {
			return nil, err
		}
		if dirty {
			return nil, fmt.Errorf("your local changes would be overwritten by checkout; commit or stash them first")
		}
	}

	targetManifest, err := st.LoadManifest(store.ScopeLocal, target)
	if err != nil {
		return nil, err
	}
	targetState, err := StateAt(st, target, targetManifest.Tip())
	if err != nil {
		return nil, err
	}

	for path := range currentState {
		if _, keep := targetState[path]; !keep {
			if err := RemoveWorkFile(cfg, path); err != nil {
				return nil, err
			}
			result.FilesRemoved++
		}
	}

	paths := make([]string, 0, len(targetState))
	for path := range targetState {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := WriteWorkFile(cfg, path, targetState[path]); err != nil {
			return nil, err
		}
		result.FilesWritten++
	}

	head.Active.Branch = target
	head.Active.Parent = targetManifest.Tip()
	if err := st.SaveHead(head); err != nil {
		return nil, err
	}
	if err := st.ClearStage(); err != nil {
		return nil, err
	}

	result.Commit = head.Active.Parent
	return result, nil
}

// isDirty reports whether the working tree diverges from state: a
// tracked file's content differs, or a tracked file is missing.
// Untracked files do not count as dirty.
func isDirty(cfg *config.Config, state map[string]string) (bool, error) {
	for path, content := range state {
		raw, err := ReadWorkFile(cfg, path)
		if os.IsNotExist(err) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		if string(raw) != content {
			return true, nil
		}
	}
	return false, nil
}
