package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStashPushAndPop(t *testing.T) {
	// S6: stash/pop.
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	commitAll(t, cfg, st, ign, "first")

	writeFile(t, cfg, "a.txt", "hey\n")

	dirName, err := StashPush(cfg, st, ign)
	require.NoError(t, err)
	require.NotEmpty(t, dirName)
	assert.Equal(t, "hello\n", readFile(t, cfg, "a.txt"), "tree reverted")
	assert.DirExists(t, filepath.Join(st.CacheDir(), dirName))

	entry, err := StashPop(cfg, st)
	require.NoError(t, err)
	assert.Equal(t, dirName, entry.DirName)
	assert.Equal(t, "hey\n", readFile(t, cfg, "a.txt"), "tree restored")
	assert.NoDirExists(t, filepath.Join(st.CacheDir(), dirName))
}

func TestStashPush_NothingToStash(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	commitAll(t, cfg, st, ign, "first")

	dirName, err := StashPush(cfg, st, ign)
	require.NoError(t, err)
	assert.Empty(t, dirName)

	stashes, err := StashList(st)
	require.NoError(t, err)
	assert.Empty(t, stashes)
}

func TestStashPush_DestroysStage(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "hello\n")
	commitAll(t, cfg, st, ign, "first")

	writeFile(t, cfg, "b.txt", "new\n")
	addPath(t, cfg, st, ign, "b.txt")

	_, err := StashPush(cfg, st, ign)
	require.NoError(t, err)

	stage, err := st.LoadStage()
	require.NoError(t, err)
	assert.Equal(t, 0, stage.Len())
	// The forced checkout only removes tracked files; the new file
	// stays on disk and its create entry is preserved in the stash.
	assert.FileExists(t, filepath.Join(cfg.WorkTree(), "b.txt"))
}

func TestStashPop_NoEntries(t *testing.T) {
	cfg, st, _ := setupRepo(t)
	_, err := StashPop(cfg, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stash entries")
}

func TestStashList_IndexesNewestFirst(t *testing.T) {
	cfg, st, ign := setupRepo(t)
	writeFile(t, cfg, "a.txt", "base\n")
	commitAll(t, cfg, st, ign, "base")

	writeFile(t, cfg, "a.txt", "one\n")
	first, err := StashPush(cfg, st, ign)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	writeFile(t, cfg, "a.txt", "two\n")
	second, err := StashPush(cfg, st, ign)
	require.NoError(t, err)
	require.NotEmpty(t, second)

	stashes, err := StashList(st)
	require.NoError(t, err)
	require.Len(t, stashes, 2)
	assert.Equal(t, second, stashes[0].DirName)
	assert.Equal(t, "stash@{0}", stashes[0].ID())
	assert.Equal(t, first, stashes[1].DirName)
}
