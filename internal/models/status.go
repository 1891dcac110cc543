package models

// Status is the classification of every working-tree file relative to
// the active state and the stage.
type Status struct {
	ActiveBranch string
	LastCommit   string
	Staged       []string
	Modified     []string
	Untracked    []string
	Ignored      []string
}

// Clean reports whether there is nothing to commit.
func (s *Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0
}

// FileDiff is the working-tree diff of one file: the byte ranges that
// differ between the active state and the current content.
type FileDiff struct {
	File    string
	Deleted string
	Added   string
}

// DiffResult is the output of the diff operation.
type DiffResult struct {
	FileDiffs []FileDiff
	Staged    []string
}
