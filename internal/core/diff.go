package core

import (
	"fmt"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/delta"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// BinaryDataSentinel marks a new binary file in diff output.
const BinaryDataSentinel = "<Binary Data>"

// Diff reports, for every differing working-tree file, the byte spans
// removed from and added to the active state. New binary files emit
// the sentinel; modified binaries emit nothing.
func Diff(cfg *config.Config, st *store.Store) (*models.DiffResult, error) {
	state, err := ActiveState(st)
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

	result := &models.DiffResult{FileDiffs: []models.FileDiff{}, Staged: []string{}}
	result.Staged = append(result.Staged, stage.Keys()...)

	for _, rel := range paths {
		raw, err := ReadWorkFile(cfg, rel)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}

		if delta.IsBinary(raw) {
			if _, tracked := state[rel]; !tracked {
				result.FileDiffs = append(result.FileDiffs, models.FileDiff{
					File:  rel,
					Added: BinaryDataSentinel,
				})
			}
			continue
		}

		previous := state[rel]
		current := string(raw)
		if previous == current {
			continue
		}
		deleted, added := delta.Trim(previous, current)
		result.FileDiffs = append(result.FileDiffs, models.FileDiff{
			File:    rel,
			Deleted: deleted,
			Added:   added,
		})
	}
	return result, nil
}
