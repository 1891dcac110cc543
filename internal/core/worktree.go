package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/artvc/art/internal/config"
)

// ListWorkTree returns the relative slash-separated paths of every
// file under the working tree, sorted, never descending into .art.
func ListWorkTree(cfg *config.Config) ([]string, error) {
	return listTree(cfg, cfg.WorkTree())
}

// listTree walks one subtree of the working tree.
func listTree(cfg *config.Config, dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == config.ArtDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(cfg.WorkTree(), path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk working tree: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadWorkFile reads one working-tree file by relative path.
func ReadWorkFile(cfg *config.Config, rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cfg.WorkTree(), filepath.FromSlash(rel)))
}

// WriteWorkFile writes one working-tree file, creating parents.
func WriteWorkFile(cfg *config.Config, rel, content string) error {
	path := filepath.Join(cfg.WorkTree(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dirs for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// RemoveWorkFile unlinks a working-tree file, tolerating absence.
func RemoveWorkFile(cfg *config.Config, rel string) error {
	path := filepath.Join(cfg.WorkTree(), filepath.FromSlash(rel))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}
	return nil
}
