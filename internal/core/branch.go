package core

import (
	"fmt"
	"strings"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// ValidateBranchName rejects path separators, C0/C1 control
// characters, and all-dot names.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name must not be empty")
	}
	if strings.Trim(name, ".") == "" {
		return fmt.Errorf("invalid branch name %q", name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			return fmt.Errorf("invalid branch name %q", name)
		}
	}
	return nil
}

// ListBranches returns local branch names plus the active branch name.
func ListBranches(st *store.Store) ([]string, string, error) {
	head, err := st.Head()
	if err != nil {
		return nil, "", err
	}
	names, err := st.ListBranches()
	if err != nil {
		return nil, "", err
	}
	return names, head.Active.Branch, nil
}

// CreateBranch seeds a new branch from the active branch: the commit
// list is copied, every referenced master and its parts are copied
// into the new local history (falling back to the remote mirror when
// a local master is missing), and the new remote mirror starts with
// the same commit list but no part files.
func CreateBranch(cfg *config.Config, st *store.Store, name string) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	if st.BranchExists(name) {
		return fmt.Errorf("branch '%s' already exists", name)
	}

	head, err := st.Head()
	if err != nil {
		return err
	}
	source, err := st.LoadManifest(store.ScopeLocal, head.Active.Branch)
	if err != nil {
		return err
	}

	for _, hash := range source.Commits {
		if err := st.CopyCommit(head.Active.Branch, name, hash); err != nil {
			return err
		}
	}

	commits := append([]string{}, source.Commits...)
	if err := st.SaveManifest(store.ScopeLocal, name, &models.BranchManifest{Commits: commits}); err != nil {
		return err
	}
	mirror := append([]string{}, source.Commits...)
	return st.SaveManifest(store.ScopeRemote, name, &models.BranchManifest{Commits: mirror})
}

// DeleteBranch removes a branch's local and remote history. The
// active branch cannot be deleted.
func DeleteBranch(cfg *config.Config, st *store.Store, name string) error {
	head, err := st.Head()
	if err != nil {
		return err
	}
	if name == head.Active.Branch {
		return fmt.Errorf("cannot delete the active branch '%s'", name)
	}
	if !st.BranchExists(name) {
		return fmt.Errorf("branch '%s' does not exist", name)
	}
	return st.RemoveBranch(name)
}
