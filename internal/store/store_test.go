package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvc/art/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), ".art"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(st.ArtPath(), 0755))
	return st
}

func TestLoadChangeDir_MissingDirectoryIsEmpty(t *testing.T) {
	cs, err := LoadChangeDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, cs.Len())
}

func TestSaveChangeDir_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stage")

	cs := models.NewChangeSet()
	cs.Set("b.txt", models.CreateChange("content b"))
	cs.Set("a.txt", models.DeleteChange())
	cs.Set("c.txt", models.OpsChange([]models.Op{{Type: models.OpInsert, Position: 0, Content: "x"}}))
	require.NoError(t, SaveChangeDir(dir, cs))

	loaded, err := LoadChangeDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "a.txt", "c.txt"}, loaded.Keys())

	ch, ok := loaded.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, models.ChangeDelete, ch.Kind)
}

func TestSaveChangeDir_EmptyInputWritesEmptyManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stage")
	require.NoError(t, SaveChangeDir(dir, models.NewChangeSet()))

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"parts": []`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no part files for an empty mapping")
}

func TestSaveChangeDir_ReplacesPreviousContents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stage")

	first := models.NewChangeSet()
	first.Set("old.txt", models.CreateChange("old"))
	require.NoError(t, SaveChangeDir(dir, first))

	second := models.NewChangeSet()
	second.Set("new.txt", models.CreateChange("new"))
	require.NoError(t, SaveChangeDir(dir, second))

	loaded, err := LoadChangeDir(dir)
	require.NoError(t, err)
	_, ok := loaded.Get("old.txt")
	assert.False(t, ok)
	_, ok = loaded.Get("new.txt")
	assert.True(t, ok)
}

func TestSaveChangeDir_OversizedChangeGetsOwnPart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stage")

	big := strings.Repeat("x", MaxPartSize+1)
	cs := models.NewChangeSet()
	cs.Set("small.txt", models.CreateChange("tiny"))
	cs.Set("huge.bin", models.CreateChange(big))
	cs.Set("after.txt", models.CreateChange("tail"))
	require.NoError(t, SaveChangeDir(dir, cs))

	loaded, err := LoadChangeDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
	ch, _ := loaded.Get("huge.bin")
	assert.Len(t, ch.Content, MaxPartSize+1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	// manifest + three parts: the oversized change split the run.
	assert.Len(t, entries, 4)
}

func TestRootSnapshot_RoundTrip(t *testing.T) {
	st := newTestStore(t)

	files := []models.RootFile{
		{Path: "a.txt", Content: "hello\n"},
		{Path: "img.png", Content: "iVBORw0KGgo=", Binary: true},
	}
	require.NoError(t, st.SaveRoot(files))

	loaded, err := st.LoadRoot()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a.txt", loaded[0].Path)
	assert.True(t, loaded[1].Binary)
}

func TestHead_MissingFileIsRepositoryError(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Head()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an art repository")
}

func TestHead_RoundTrip(t *testing.T) {
	st := newTestStore(t)

	head := models.NewHeadState("main")
	head.Active.Parent = "abc123"
	head.Remote = "owner/repo"
	head.Configuration["token"] = "secret"
	require.NoError(t, st.SaveHead(head))

	loaded, err := st.Head()
	require.NoError(t, err)
	assert.Equal(t, "main", loaded.Active.Branch)
	assert.Equal(t, "abc123", loaded.Active.Parent)
	assert.Equal(t, "secret", loaded.Configuration["token"])
	assert.True(t, st.IsRepository())
}

func TestManifest_MissingIsEmpty(t *testing.T) {
	st := newTestStore(t)
	manifest, err := st.LoadManifest(ScopeLocal, "main")
	require.NoError(t, err)
	assert.Empty(t, manifest.Commits)
	assert.Equal(t, "", manifest.Tip())
}

func TestManifest_RoundTripAndListing(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.SaveManifest(ScopeLocal, "main", &models.BranchManifest{Commits: []string{"c1", "c2"}}))
	require.NoError(t, st.SaveManifest(ScopeLocal, "feature", &models.BranchManifest{}))

	manifest, err := st.LoadManifest(ScopeLocal, "main")
	require.NoError(t, err)
	assert.Equal(t, "c2", manifest.Tip())
	assert.True(t, manifest.Contains("c1"))

	names, err := st.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []string{"feature", "main"}, names)
	assert.True(t, st.BranchExists("feature"))
	assert.False(t, st.BranchExists("gone"))
}

func TestCommit_WriteReadAndParts(t *testing.T) {
	st := newTestStore(t)

	changes := models.NewChangeSet()
	changes.Set("a.txt", models.CreateChange("hello\n"))

	parts, err := st.WriteCommitParts("main", "deadbeef", changes)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "deadbeef.part.0.json", parts[0])

	commit := &models.Commit{Hash: "deadbeef", Message: "first", Timestamp: 1700000000000, Parts: parts}
	require.NoError(t, st.WriteCommit(ScopeLocal, "main", commit))

	loaded, err := st.ReadCommit(ScopeLocal, "main", "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "first", loaded.Message)

	merged, err := st.ReadCommitChanges(ScopeLocal, "main", loaded)
	require.NoError(t, err)
	ch, ok := merged.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello\n", ch.Content)
}

func TestCopyCommit_FallsBackToRemoteMirror(t *testing.T) {
	st := newTestStore(t)

	changes := models.NewChangeSet()
	changes.Set("a.txt", models.CreateChange("hello\n"))

	// Write the commit only into the remote mirror of "main".
	mirrorDir := st.BranchDir(ScopeRemote, "main")
	require.NoError(t, os.MkdirAll(mirrorDir, 0755))
	parts, err := writeChangeParts(mirrorDir, "cafe.", changes)
	require.NoError(t, err)
	commit := &models.Commit{Hash: "cafe", Message: "mirror only", Timestamp: 1, Parts: parts}
	require.NoError(t, st.WriteCommit(ScopeRemote, "main", commit))

	require.NoError(t, st.CopyCommit("main", "feature", "cafe"))

	copied, err := st.ReadCommit(ScopeLocal, "feature", "cafe")
	require.NoError(t, err)
	merged, err := st.ReadCommitChanges(ScopeLocal, "feature", copied)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Len())
}

func TestStash_ListNewestFirst(t *testing.T) {
	st := newTestStore(t)

	cs := models.NewChangeSet()
	cs.Set("a.txt", models.CreateChange("x"))
	_, err := st.SaveStash(1000, cs)
	require.NoError(t, err)
	_, err = st.SaveStash(3000, cs)
	require.NoError(t, err)
	_, err = st.SaveStash(2000, cs)
	require.NoError(t, err)

	stashes, err := st.ListStashes()
	require.NoError(t, err)
	require.Len(t, stashes, 3)
	assert.Equal(t, "stash_3000", stashes[0].DirName)
	assert.Equal(t, 0, stashes[0].Index)
	assert.Equal(t, "stash@{0}", stashes[0].ID())
	assert.Equal(t, "stash_1000", stashes[2].DirName)

	require.NoError(t, st.RemoveStash("stash_3000"))
	stashes, err = st.ListStashes()
	require.NoError(t, err)
	assert.Len(t, stashes, 2)
}

func TestStage_RoundTripAndClear(t *testing.T) {
	st := newTestStore(t)

	cs := models.NewChangeSet()
	cs.Set("a.txt", models.CreateChange("x"))
	require.NoError(t, st.SaveStage(cs))

	loaded, err := st.LoadStage()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())

	require.NoError(t, st.ClearStage())
	loaded, err = st.LoadStage()
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestStateCache_PutGetInvalidate(t *testing.T) {
	st := newTestStore(t)

	st.PutState("main@c1", map[string]string{"a.txt": "hello"})
	state, ok := st.CachedState("main@c1")
	require.True(t, ok)
	assert.Equal(t, "hello", state["a.txt"])

	// Cached values are isolated from caller mutation.
	state["a.txt"] = "mutated"
	again, ok := st.CachedState("main@c1")
	require.True(t, ok)
	assert.Equal(t, "hello", again["a.txt"])

	st.InvalidateStates()
	_, ok = st.CachedState("main@c1")
	assert.False(t, ok)
}
