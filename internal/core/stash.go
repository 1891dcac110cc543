package core

import (
	"fmt"
	"os"
	"time"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/delta"
	"github.com/artvc/art/internal/ignore"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// StashPush saves the working-tree delta against the active state
// (the same computation add performs over the whole tree), destroys
// the stage, and reverts the working tree with a forced checkout of
// the active branch. Returns the stash directory name, or empty when
// there was nothing to stash.
func StashPush(cfg *config.Config, st *store.Store, ign *ignore.Matcher) (string, error) {
	head, err := st.Head()
	if err != nil {
		return "", err
	}
	state, err := StateAt(st, head.Active.Branch, head.Active.Parent)
	if err != nil {
		return "", err
	}

	paths, err := resolveAddTarget(cfg, ign, state, cfg.WorkTree())
	if err != nil {
		return "", err
	}
	changes, err := computeChanges(cfg, state, paths)
	if err != nil {
		return "", err
	}
	if changes.Len() == 0 {
		return "", nil
	}

	dirName, err := st.SaveStash(time.Now().UnixMilli(), changes)
	if err != nil {
		return "", err
	}
	if err := st.ClearStage(); err != nil {
		return "", err
	}
	if _, err := Checkout(cfg, st, head.Active.Branch, CheckoutOptions{Force: true}); err != nil {
		return "", err
	}
	return dirName, nil
}

// StashList returns stash entries, newest first.
func StashList(st *store.Store) ([]models.StashEntry, error) {
	return st.ListStashes()
}

// StashPop applies the newest stash to the working tree with replay
// semantics and removes its directory.
func StashPop(cfg *config.Config, st *store.Store) (*models.StashEntry, error) {
	stashes, err := st.ListStashes()
	if err != nil {
		return nil, err
	}
	if len(stashes) == 0 {
		return nil, fmt.Errorf("no stash entries found")
	}

	newest := stashes[0]
	changes, err := st.LoadStash(newest.DirName)
	if err != nil {
		return nil, err
	}

	for _, path := range changes.Keys() {
		ch, _ := changes.Get(path)
		switch ch.Kind {
		case models.ChangeCreate:
			content, err := DecodeContent(ch)
			if err != nil {
				return nil, fmt.Errorf("stash entry %s: %w", path, err)
			}
			if err := WriteWorkFile(cfg, path, content); err != nil {
				return nil, err
			}
		case models.ChangeDelete:
			if err := RemoveWorkFile(cfg, path); err != nil {
				return nil, err
			}
		case models.ChangeOps:
			raw, err := ReadWorkFile(cfg, path)
			if err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			if err := WriteWorkFile(cfg, path, delta.Apply(string(raw), ch.Ops)); err != nil {
				return nil, err
			}
		}
	}

	if err := st.RemoveStash(newest.DirName); err != nil {
		return nil, err
	}
	return &newest, nil
}
