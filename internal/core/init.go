package core

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/delta"
	"github.com/artvc/art/internal/ignore"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// DefaultBranch is the branch created by init.
const DefaultBranch = "main"

// Init creates a new repository in dir: the .art directory, the root
// snapshot of the current tree, the head state, and empty local and
// remote manifests for the default branch.
func Init(dir string) (*store.Store, error) {
	cfg := config.ForWorkTree(dir)

	st, err := store.Open(cfg.ArtPath())
	if err != nil {
		return nil, err
	}
	if st.IsRepository() {
		return nil, fmt.Errorf("art repository already exists in %s", dir)
	}
	if err := os.MkdirAll(cfg.ArtPath(), 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", config.ArtDir, err)
	}

	files, err := SnapshotWorkTree(cfg, ignore.NewMatcher(dir))
	if err != nil {
		return nil, err
	}
	if err := st.SaveRoot(files); err != nil {
		return nil, err
	}

	if err := st.SaveHead(models.NewHeadState(DefaultBranch)); err != nil {
		return nil, err
	}
	if err := st.SaveManifest(store.ScopeLocal, DefaultBranch, &models.BranchManifest{}); err != nil {
		return nil, err
	}
	if err := st.SaveManifest(store.ScopeRemote, DefaultBranch, &models.BranchManifest{}); err != nil {
		return nil, err
	}
	return st, nil
}

// SnapshotWorkTree captures the full content of every tracked file in
// the working tree, for the root snapshot. Binary content is stored
// base64-encoded.
func SnapshotWorkTree(cfg *config.Config, ign *ignore.Matcher) ([]models.RootFile, error) {
	paths, err := ListWorkTree(cfg)
	if err != nil {
		return nil, err
	}

	var files []models.RootFile
	for _, rel := range paths {
		if ign.Match(rel, false) {
			continue
		}
		raw, err := ReadWorkFile(cfg, rel)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		if delta.IsBinary(raw) {
			files = append(files, models.RootFile{
				Path:    rel,
				Content: base64.StdEncoding.EncodeToString(raw),
				Binary:  true,
			})
			continue
		}
		files = append(files, models.RootFile{Path: rel, Content: string(raw)})
	}
	return files, nil
}
