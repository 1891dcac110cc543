package core

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/delta"
	"github.com/artvc/art/internal/ignore"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// Add stages the delta of target (a file or directory) against the
// active state. New files stage as creates (binary content base64);
// modified text files stage as edit scripts; modifications to already
// tracked binary files are not recorded. Existing stage entries are
// overwritten per path. Returns the number of files staged.
func Add(cfg *config.Config, st *store.Store, ign *ignore.Matcher, target string) (int, error) {
	state, err := ActiveState(st)
	if err != nil {
		return 0, err
	}

	paths, err := resolveAddTarget(cfg, ign, state, target)
	if err != nil {
		return 0, err
	}

	stage, err := st.LoadStage()
	if err != nil {
		return 0, err
	}

	changes, err := computeChanges(cfg, state, paths)
	if err != nil {
		return 0, err
	}
	if changes.Len() == 0 {
		return 0, nil
	}

	stage.Merge(changes)
	if err := st.SaveStage(stage); err != nil {
		return 0, err
	}
	return changes.Len(), nil
}

// resolveAddTarget expands an add target into working-tree paths. A
// directory is walked recursively with the ignore predicate applied;
// files already tracked in the active state bypass ignore.
func resolveAddTarget(cfg *config.Config, ign *ignore.Matcher, state map[string]string, target string) ([]string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(cfg.WorkTree(), abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("path %s is outside the repository", target)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("path %s not found", target)
	}
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{filepath.ToSlash(rel)}, nil
	}

	all, err := listTree(cfg, abs)
	if err != nil {
		return nil, err
	}
	var selected []string
	for _, p := range all {
		if _, tracked := state[p]; !tracked && ign.Match(p, false) {
			continue
		}
		selected = append(selected, p)
	}
	return selected, nil
}

// computeChanges builds the change set of the given working-tree
// paths against a reference state.
func computeChanges(cfg *config.Config, state map[string]string, paths []string) (*models.ChangeSet, error) {
	changes := models.NewChangeSet()
	for _, rel := range paths {
		raw, err := ReadWorkFile(cfg, rel)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}

		prev, tracked := state[rel]
		if !tracked {
			if delta.IsBinary(raw) {
				changes.Set(rel, models.BinaryCreateChange(base64.StdEncoding.EncodeToString(raw)))
			} else {
				changes.Set(rel, models.CreateChange(string(raw)))
			}
			continue
		}

		// Binary modifications of tracked files are not represented
		// in the delta stream.
		if delta.IsBinary(raw) {
			continue
		}
		ops := delta.Compute(prev, string(raw))
		if ops == nil {
			continue
		}
		changes.Set(rel, models.OpsChange(ops))
	}
	return changes, nil
}
