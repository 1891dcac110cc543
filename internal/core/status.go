package core

import (
	"fmt"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/ignore"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// Status classifies every working-tree file against the active state
// and the stage. Already-tracked files never appear in Ignored.
func Status(cfg *config.Config, st *store.Store, ign *ignore.Matcher) (*models.Status, error) {
	head, err := st.Head()
	if err != nil {
		return nil, err
	}
	state, err := StateAt(st, head.Active.Branch, head.Active.Parent)
	if err != nil {
		return nil, err
	}
	stage, err := st.LoadStage()
	if err != nil {
		return nil, err
	}
	paths, err := ListWorkTree(cfg)
	if err != nil {
		return nil, err
	}

	status := &models.Status{
		ActiveBranch: head.Active.Branch,
		LastCommit:   head.Active.Parent,
		Staged:       []string{},
		Modified:     []string{},
		Untracked:    []string{},
		Ignored:      []string{},
	}

	for _, rel := range paths {
		if _, staged := stage.Get(rel); staged {
			status.Staged = append(status.Staged, rel)
			continue
		}
		if prev, tracked := state[rel]; tracked {
			raw, err := ReadWorkFile(cfg, rel)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", rel, err)
			}
			if string(raw) != prev {
				status.Modified = append(status.Modified, rel)
			}
			continue
		}
		if ign.Match(rel, false) {
			status.Ignored = append(status.Ignored, rel)
			continue
		}
		status.Untracked = append(status.Untracked, rel)
	}
	return status, nil
}
