package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvc/art/internal/store"
)

func TestValidateBranchName(t *testing.T) {
	assert.NoError(t, ValidateBranchName("feature"))
	assert.NoError(t, ValidateBranchName("feature-1.2"))

	assert.Error(t, ValidateBranchName(""))
	assert.Error(t, ValidateBranchName("a/b"))
	assert.Error(t, ValidateBranchName(`a\b`))
	assert.Error(t, ValidateBranchName("."))
	assert.Error(t, ValidateBranchName(".."))
	assert.Error(t, ValidateBranchName("bad\x01name"))
	assert.Error(t, ValidateBranchName("badname"))
}

func TestCreateBranch_CopiesHistoryAndSeedsMirror(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	first := commitAll(t, cfg, st, ign, "first")

	require.NoError(t, CreateBranch(cfg, st, "feature"))

	local, err := st.LoadManifest(store.ScopeLocal, "feature")
	require.NoError(t, err)
	assert.Equal(t, []string{first.Hash}, local.Commits)

	// The commit master and parts were copied into the new branch dir.
	copied, err := st.ReadCommit(store.ScopeLocal, "feature", first.Hash)
	require.NoError(t, err)
	changes, err := st.ReadCommitChanges(store.ScopeLocal, "feature", copied)
	require.NoError(t, err)
	assert.Equal(t, 1, changes.Len())

	// Mirror holds the same commit list but no masters.
	mirror, err := st.LoadManifest(store.ScopeRemote, "feature")
	require.NoError(t, err)
	assert.Equal(t, []string{first.Hash}, mirror.Commits)
	_, err = st.ReadCommit(store.ScopeRemote, "feature", first.Hash)
	assert.Error(t, err)

	require.Error(t, CreateBranch(cfg, st, "feature"), "duplicate name")
}

func TestDeleteBranch_Rules(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	commitAll(t, cfg, st, ign, "first")
	require.NoError(t, CreateBranch(cfg, st, "feature"))

	assert.Error(t, DeleteBranch(cfg, st, "main"), "active branch")
	assert.Error(t, DeleteBranch(cfg, st, "ghost"), "unknown branch")

	require.NoError(t, DeleteBranch(cfg, st, "feature"))
	assert.False(t, st.BranchExists("feature"))
}

func TestCheckout_DirtyTreeProtection(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	commitAll(t, cfg, st, ign, "first")

	writeFile(t, cfg, "a.txt", "dirty\n")
	_, err := Checkout(cfg, st, "feature", CheckoutOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local changes")

	// Forced checkout overwrites.
	result, err := Checkout(cfg, st, "feature", CheckoutOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, "feature", result.Branch)
	assert.Equal(t, "hello\n", readFile(t, cfg, "a.txt"))
}

func TestCheckout_ForcedIsIdempotentOnCleanTree(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	commitAll(t, cfg, st, ign, "first")

	_, err := Checkout(cfg, st, "main", CheckoutOptions{Force: true})
	require.NoError(t, err)
	once := readFile(t, cfg, "a.txt")

	_, err = Checkout(cfg, st, "main", CheckoutOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, once, readFile(t, cfg, "a.txt"))
}

func TestBranchAndDiverge(t *testing.T) {
	// S3: branch and diverge.
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	commitAll(t, cfg, st, ign, "first")
	writeFile(t, cfg, "a.txt", "Hello\n")
	commitAll(t, cfg, st, ign, "cap")

	require.NoError(t, CreateBranch(cfg, st, "feature"))
	_, err := Checkout(cfg, st, "feature", CheckoutOptions{})
	require.NoError(t, err)

	writeFile(t, cfg, "a.txt", "Hello World\n")
	commitAll(t, cfg, st, ign, "extend")

	_, err = Checkout(cfg, st, "main", CheckoutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", readFile(t, cfg, "a.txt"))

	mainLog, err := Log(cfg, st)
	require.NoError(t, err)
	assert.Len(t, mainLog, 2)

	_, err = Checkout(cfg, st, "feature", CheckoutOptions{})
	require.NoError(t, err)
	featureLog, err := Log(cfg, st)
	require.NoError(t, err)
	assert.Len(t, featureLog, 3)
	assert.Equal(t, "Hello World\n", readFile(t, cfg, "a.txt"))
}

func TestCheckout_RemovesFilesAbsentFromTarget(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "base\n")
	commitAll(t, cfg, st, ign, "base")

	_, err := Checkout(cfg, st, "feature", CheckoutOptions{})
	require.NoError(t, err)
	writeFile(t, cfg, "extra.txt", "only on feature\n")
	commitAll(t, cfg, st, ign, "extra")

	_, err = Checkout(cfg, st, "main", CheckoutOptions{})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(cfg.WorkTree(), "extra.txt"))

	_, err = Checkout(cfg, st, "feature", CheckoutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "only on feature\n", readFile(t, cfg, "extra.txt"))
}
