package core

import (
	"fmt"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/store"
)

// Reset with an empty hash destroys the stage and nothing else. With
// a hash, it moves the branch head back to that commit: the head
// pointer and manifest are truncated, then a forced checkout
// materializes the working tree. Commit files beyond the truncation
// point stay on disk as a recovery path.
func Reset(cfg *config.Config, st *store.Store, hash string) error {
	if hash == "" {
		return st.ClearStage()
	}

	head, err := st.Head()
	if err != nil {
		return err
	}
	branch := head.Active.Branch

	manifest, err := st.LoadManifest(store.ScopeLocal, branch)
	if err != nil {
		return err
	}
	idx := -1
	for i, h := range manifest.Commits {
		if h == hash {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("commit %s not found on branch %s", hash, branch)
	}

	head.Active.Parent = hash
	if err := st.SaveHead(head); err != nil {
		return err
	}

	manifest.Commits = manifest.Commits[:idx+1]
	if err := st.SaveManifest(store.ScopeLocal, branch, manifest); err != nil {
		return err
	}

	_, err = Checkout(cfg, st, branch, CheckoutOptions{Force: true})
	return err
}
