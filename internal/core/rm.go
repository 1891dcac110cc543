package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// Rm stages a deletion for the path and unlinks the working-tree file
// if present.
func Rm(cfg *config.Config, st *store.Store, target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(cfg.WorkTree(), abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %s is outside the repository", target)
	}
	rel = filepath.ToSlash(rel)

	stage, err := st.LoadStage()
	if err != nil {
		return err
	}
	stage.Set(rel, models.DeleteChange())
	if err := st.SaveStage(stage); err != nil {
		return err
	}
	return RemoveWorkFile(cfg, rel)
}
