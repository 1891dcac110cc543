package core

import (
	"strings"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// Log returns the commits of the active branch, newest first.
func Log(cfg *config.Config, st *store.Store) ([]*models.Commit, error) {
	head, err := st.Head()
	if err != nil {
		return nil, err
	}
	manifest, err := st.LoadManifest(store.ScopeLocal, head.Active.Branch)
	if err != nil {
		return nil, err
	}

	commits := make([]*models.Commit, 0, len(manifest.Commits))
	for i := len(manifest.Commits) - 1; i >= 0; i-- {
		commit, err := st.ReadCommit(store.ScopeLocal, head.Active.Branch, manifest.Commits[i])
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// FormatLog renders commits in the long log format.
func FormatLog(commits []*models.Commit) string {
	var b strings.Builder
	for _, c := range commits {
		b.WriteString("commit " + c.Hash + "\n")
		b.WriteString("Date:   " + c.Time().Format("Mon Jan 2 15:04:05 2006") + "\n\n")
		b.WriteString("    " + c.Message + "\n\n")
	}
	return b.String()
}
