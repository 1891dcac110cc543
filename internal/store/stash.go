package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/artvc/art/internal/models"
)

// ListStashes returns stash entries newest first, indexed from 0.
func (s *Store) ListStashes() ([]models.StashEntry, error) {
	entries, err := os.ReadDir(s.CacheDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list stashes: %w", err)
	}

	var stashes []models.StashEntry
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), stashPrefix) {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimPrefix(e.Name(), stashPrefix), 10, 64)
		if err != nil {
			continue
		}
		stashes = append(stashes, models.StashEntry{DirName: e.Name(), Timestamp: ts})
	}

	sort.Slice(stashes, func(i, j int) bool {
		return stashes[i].Timestamp > stashes[j].Timestamp
	})
	for i := range stashes {
		stashes[i].Index = i
	}
	return stashes, nil
}

// SaveStash writes a change set as a new stash directory named by its
// millisecond timestamp. A colliding timestamp is bumped forward so
// two stashes in the same millisecond stay distinct.
func (s *Store) SaveStash(timestampMs int64, changes *models.ChangeSet) (string, error) {
	if err := os.MkdirAll(s.CacheDir(), 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	dirName := fmt.Sprintf("%s%d", stashPrefix, timestampMs)
	for {
		if _, err := os.Stat(filepath.Join(s.CacheDir(), dirName)); os.IsNotExist(err) {
			break
		}
		timestampMs++
		dirName = fmt.Sprintf("%s%d", stashPrefix, timestampMs)
	}
	if err := SaveChangeDir(filepath.Join(s.CacheDir(), dirName), changes); err != nil {
		return "", err
	}
	return dirName, nil
}

// LoadStash reads the change set of one stash directory.
func (s *Store) LoadStash(dirName string) (*models.ChangeSet, error) {
	return LoadChangeDir(filepath.Join(s.CacheDir(), dirName))
}

// RemoveStash deletes one stash directory.
func (s *Store) RemoveStash(dirName string) error {
	return removeAll(filepath.Join(s.CacheDir(), dirName))
}
