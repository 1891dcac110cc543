package metastore

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvc/art/internal/models"
)

func newTestStore(t *testing.T) *BboltStore {
	t.Helper()
	st, err := NewBboltStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBranch_UpdateAndGet(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetBranch("main")
	assert.ErrorIs(t, err, ErrNotFound)

	manifest := &models.BranchManifest{Commits: []string{"c1", "c2"}}
	require.NoError(t, st.UpdateBranch("main", manifest, ""))

	loaded, err := st.GetBranch("main")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, loaded.Commits)

	names, err := st.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, names)
}

func TestBranch_CompareAndSwap(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.UpdateBranch("main", &models.BranchManifest{Commits: []string{"c1"}}, ""))

	// Wrong expected tip is rejected.
	err := st.UpdateBranch("main", &models.BranchManifest{Commits: []string{"c1", "c2"}}, "stale")
	assert.ErrorIs(t, err, ErrTipMismatch)

	// Matching tip succeeds.
	require.NoError(t, st.UpdateBranch("main", &models.BranchManifest{Commits: []string{"c1", "c2"}}, "c1"))

	loaded, err := st.GetBranch("main")
	require.NoError(t, err)
	assert.Equal(t, "c2", loaded.Tip())
}

func TestCommit_PutIsIdempotent(t *testing.T) {
	st := newTestStore(t)

	master, _ := json.Marshal(&models.Commit{Hash: "c1", Message: "first"})
	rec := &CommitRecord{Master: master, PartHashes: map[string]string{"c1.part.0.json": "deadbeef"}}
	require.NoError(t, st.PutCommit("c1", rec))

	has, err := st.HasCommit("c1")
	require.NoError(t, err)
	assert.True(t, has)

	// Second put with different content is ignored.
	other, _ := json.Marshal(&models.Commit{Hash: "c1", Message: "changed"})
	require.NoError(t, st.PutCommit("c1", &CommitRecord{Master: other}))

	loaded, err := st.GetCommit("c1")
	require.NoError(t, err)
	var decoded models.Commit
	require.NoError(t, json.Unmarshal(loaded.Master, &decoded))
	assert.Equal(t, "first", decoded.Message)
}

func TestRoot_WriteOnce(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetRoot()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.PutRoot(&RootRecord{Manifest: []string{"manifest.part.0.json"}}))
	require.NoError(t, st.PutRoot(&RootRecord{Manifest: []string{"other.json"}}))

	rec, err := st.GetRoot()
	require.NoError(t, err)
	assert.Equal(t, []string{"manifest.part.0.json"}, rec.Manifest)
}

func TestCounts(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.UpdateBranch("main", &models.BranchManifest{}, ""))
	require.NoError(t, st.PutCommit("c1", &CommitRecord{}))
	require.NoError(t, st.PutCommit("c2", &CommitRecord{}))

	branches, commits, err := st.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, branches)
	assert.Equal(t, 2, commits)
}
