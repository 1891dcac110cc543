package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artvc/art/internal/models"
)

// partsManifest indexes the part files of a paginated directory.
type partsManifest struct {
	Parts []string `json:"parts"`
}

// changePart is the payload shape of commit, stage, and stash parts.
type changePart struct {
	Changes *models.ChangeSet `json:"changes"`
}

// rootPart is the payload shape of root-snapshot parts.
type rootPart struct {
	Files []models.RootFile `json:"files"`
}

// LoadChangeDir reads a paginated change directory (stage or stash).
// A missing directory or manifest yields an empty set, not an error.
func LoadChangeDir(dir string) (*models.ChangeSet, error) {
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return models.NewChangeSet(), nil
	}
	return loadChangeParts(dir, manifest.Parts)
}

// SaveChangeDir atomically replaces a paginated change directory with
// a fresh manifest plus parts. Part files are written first and the
// manifest last, so a reader that sees the manifest sees all parts.
func SaveChangeDir(dir string, cs *models.ChangeSet) error {
	if err := removeAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dir), err)
	}

	parts, err := writeChangeParts(dir, "", cs)
	if err != nil {
		return err
	}
	return writeJSONAtomic(filepath.Join(dir, manifestFileName), partsManifest{Parts: parts})
}

// writeChangeParts splits a change set into part files named
// <prefix>part.<i>.json and returns the filenames in order. A new part
// opens when appending the next change would push the current part
// past MaxPartSize, unless the current part is empty.
func writeChangeParts(dir, prefix string, cs *models.ChangeSet) ([]string, error) {
	parts := []string{}
	current := models.NewChangeSet()
	currentSize := 0

	flush := func() error {
		if current.Len() == 0 {
			return nil
		}
		name := fmt.Sprintf("%spart.%d.json", prefix, len(parts))
		if err := writeJSON(filepath.Join(dir, name), changePart{Changes: current}); err != nil {
			return err
		}
		parts = append(parts, name)
		current = models.NewChangeSet()
		currentSize = 0
		return nil
	}

	for _, path := range cs.Keys() {
		change, _ := cs.Get(path)
		encoded, err := json.Marshal(change)
		if err != nil {
			return nil, fmt.Errorf("encode change for %s: %w", path, err)
		}
		size := len(encoded)
		if currentSize+size > MaxPartSize && current.Len() > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		current.Set(path, change)
		currentSize += size
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return parts, nil
}

// loadChangeParts reads the named parts from dir and merges them by
// key, in part order.
func loadChangeParts(dir string, parts []string) (*models.ChangeSet, error) {
	merged := models.NewChangeSet()
	for _, name := range parts {
		var part changePart
		if err := readJSON(filepath.Join(dir, name), &part); err != nil {
			return nil, fmt.Errorf("read part %s: %w", name, err)
		}
		if part.Changes != nil {
			merged.Merge(part.Changes)
		}
	}
	return merged, nil
}

// SaveRoot writes the root snapshot: parts named manifest.part.<i>.json
// plus a master manifest. The snapshot is written once by init and
// never mutated.
func (s *Store) SaveRoot(files []models.RootFile) error {
	dir := s.RootDir()
	if err := removeAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create root dir: %w", err)
	}

	parts := []string{}
	var current []models.RootFile
	currentSize := 0

	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		name := fmt.Sprintf("manifest.part.%d.json", len(parts))
		if err := writeJSON(filepath.Join(dir, name), rootPart{Files: current}); err != nil {
			return err
		}
		parts = append(parts, name)
		current = nil
		currentSize = 0
		return nil
	}

	for _, f := range files {
		encoded, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode root entry %s: %w", f.Path, err)
		}
		size := len(encoded)
		if currentSize+size > MaxPartSize && len(current) > 0 {
			if err := flush(); err != nil {
				return err
			}
		}
		current = append(current, f)
		currentSize += size
	}
	if err := flush(); err != nil {
		return err
	}
	return writeJSONAtomic(filepath.Join(dir, manifestFileName), partsManifest{Parts: parts})
}

// LoadRoot reads the root snapshot entries in part order. A missing
// snapshot yields an empty slice.
func (s *Store) LoadRoot() ([]models.RootFile, error) {
	dir := s.RootDir()
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, nil
	}

	var files []models.RootFile
	for _, name := range manifest.Parts {
		var part rootPart
		if err := readJSON(filepath.Join(dir, name), &part); err != nil {
			return nil, fmt.Errorf("read root part %s: %w", name, err)
		}
		files = append(files, part.Files...)
	}
	return files, nil
}

// readManifest reads a parts manifest, returning nil when the
// directory or manifest is absent.
func readManifest(dir string) (*partsManifest, error) {
	var manifest partsManifest
	err := readJSON(filepath.Join(dir, manifestFileName), &manifest)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// readJSON decodes one JSON file into v.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes v pretty-printed with 2-space indent.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSONAtomic writes v to a temporary file and renames it into
// place. Used for manifests, which advertise the rest of a directory.
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
