package core

import (
	"fmt"
	"sort"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// MergeResult contains the outcome of a three-way merge.
type MergeResult struct {
	Target    string
	Ancestor  string   // common ancestor hash, empty when histories share only the root
	Merged    []string // files fast-forwarded to the target's version
	Deleted   []string // files removed because the target deleted them
	Conflicts []string // files written with conflict markers
}

// UpToDate reports whether the merge changed nothing.
func (r *MergeResult) UpToDate() bool {
	return len(r.Merged) == 0 && len(r.Deleted) == 0 && len(r.Conflicts) == 0
}

// Merge performs a three-way merge of targetBranch into the active
// branch. Results are written to the working tree and staged; the
// merge is not auto-committed. The common ancestor is the most recent
// commit of the active manifest also present in the target manifest —
// a positional search that assumes linear per-branch histories.
func Merge(cfg *config.Config, st *store.Store, targetBranch string) (*MergeResult, error) {
	head, err := st.Head()
	if err != nil {
		return nil, err
	}
	if targetBranch == head.Active.Branch {
		return nil, fmt.Errorf("cannot merge branch '%s' into itself", targetBranch)
	}
	if !st.BranchExists(targetBranch) {
		return nil, fmt.Errorf("branch '%s' does not exist", targetBranch)
	}

	active := head.Active.Branch
	activeManifest, err := st.LoadManifest(store.ScopeLocal, active)
	if err != nil {
		return nil, err
	}
	targetManifest, err := st.LoadManifest(store.ScopeLocal, targetBranch)
	if err != nil {
		return nil, err
	}

	ancestor := ""
	for i := len(activeManifest.Commits) - 1; i >= 0; i-- {
		if targetManifest.Contains(activeManifest.Commits[i]) {
			ancestor = activeManifest.Commits[i]
			break
		}
	}

	base, err := StateAt(st, active, ancestor)
	if err != nil {
		return nil, fmt.Errorf("reconstruct base state: %w", err)
	}
	ours, err := StateAt(st, active, head.Active.Parent)
	if err != nil {
		return nil, fmt.Errorf("reconstruct our state: %w", err)
	}
	theirs, err := StateAt(st, targetBranch, targetManifest.Tip())
	if err != nil {
		return nil, fmt.Errorf("reconstruct their state: %w", err)
	}

	result := &MergeResult{
		Target:    targetBranch,
		Ancestor:  ancestor,
		Merged:    []string{},
		Deleted:   []string{},
		Conflicts: []string{},
	}

	stage, err := st.LoadStage()
	if err != nil {
		return nil, err
	}

	for _, path := range unionKeys(ours, theirs) {
		o, inOurs := ours[path]
		t, inTheirs := theirs[path]
		b, inBase := base[path]

		if inOurs == inTheirs && o == t {
			continue
		}

		baseEqOurs := inBase == inOurs && b == o
		baseEqTheirs := inBase == inTheirs && b == t

		switch {
		case baseEqOurs && !baseEqTheirs:
			// Only the target side moved: fast-forward this file.
			if !inTheirs {
				if err := RemoveWorkFile(cfg, path); err != nil {
					return nil, err
				}
				stage.Set(path, models.DeleteChange())
				result.Deleted = append(result.Deleted, path)
				continue
			}
			if err := WriteWorkFile(cfg, path, t); err != nil {
				return nil, err
			}
			stage.Set(path, models.CreateChange(t))
			result.Merged = append(result.Merged, path)

		case !baseEqOurs && !baseEqTheirs:
			// Both sides moved and disagree.
			marked := ConflictMarker(o, t, targetBranch)
			if err := WriteWorkFile(cfg, path, marked); err != nil {
				return nil, err
			}
			stage.Set(path, models.CreateChange(marked))
			result.Conflicts = append(result.Conflicts, path)

			// baseEqTheirs && !baseEqOurs: our side already carries the
			// change; nothing to do.
		}
	}

	if err := st.SaveStage(stage); err != nil {
		return nil, err
	}
	return result, nil
}

// ConflictMarker renders the conflict-marked blob for one file.
func ConflictMarker(ours, theirs, targetBranch string) string {
	return "<<<<<<< active\n" + ours + "\n=======\n" + theirs + "\n>>>>>>> " + targetBranch + "\n"
}

func unionKeys(a, b map[string]string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
