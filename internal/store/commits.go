package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/artvc/art/internal/models"
)

// ReadCommit reads a commit master from a branch history.
func (s *Store) ReadCommit(scope Scope, branch, hash string) (*models.Commit, error) {
	var commit models.Commit
	path := filepath.Join(s.BranchDir(scope, branch), hash+".json")
	if err := readJSON(path, &commit); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("commit %s not found on branch %s", hash, branch)
		}
		return nil, err
	}
	return &commit, nil
}

// WriteCommit writes a commit master into a branch history.
func (s *Store) WriteCommit(scope Scope, branch string, commit *models.Commit) error {
	dir := s.BranchDir(scope, branch)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create branch dir %s: %w", branch, err)
	}
	return writeJSON(filepath.Join(dir, commit.Hash+".json"), commit)
}

// WriteCommitParts paginates a commit's change set into
// <hash>.part.<i>.json files in the local branch directory and
// returns the part names for the master.
func (s *Store) WriteCommitParts(branch, hash string, changes *models.ChangeSet) ([]string, error) {
	dir := s.BranchDir(ScopeLocal, branch)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create branch dir %s: %w", branch, err)
	}
	return writeChangeParts(dir, hash+".", changes)
}

// ReadCommitChanges merges the part files referenced by a commit
// master into its full change set.
func (s *Store) ReadCommitChanges(scope Scope, branch string, commit *models.Commit) (*models.ChangeSet, error) {
	return loadChangeParts(s.BranchDir(scope, branch), commit.Parts)
}

// CopyCommit copies a commit master and its parts from one branch
// directory to another. The local history is preferred; when the
// master is missing there, the branch's remote mirror is used.
func (s *Store) CopyCommit(fromBranch, toBranch, hash string) error {
	srcDir := s.BranchDir(ScopeLocal, fromBranch)
	commit, err := s.ReadCommit(ScopeLocal, fromBranch, hash)
	if err != nil {
		srcDir = s.BranchDir(ScopeRemote, fromBranch)
		commit, err = s.ReadCommit(ScopeRemote, fromBranch, hash)
		if err != nil {
			return fmt.Errorf("commit %s not found on branch %s or its mirror", hash, fromBranch)
		}
	}

	dstDir := s.BranchDir(ScopeLocal, toBranch)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("create branch dir %s: %w", toBranch, err)
	}

	names := append([]string{hash + ".json"}, commit.Parts...)
	for _, name := range names {
		if err := copyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dst), err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(dst), err)
	}
	return nil
}
