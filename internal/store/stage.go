package store

import "github.com/artvc/art/internal/models"

// LoadStage reads the staging index. Absent stage yields an empty set.
func (s *Store) LoadStage() (*models.ChangeSet, error) {
	return LoadChangeDir(s.StageDir())
}

// SaveStage replaces the staging index.
func (s *Store) SaveStage(changes *models.ChangeSet) error {
	return SaveChangeDir(s.StageDir(), changes)
}

// ClearStage destroys the staging index.
func (s *Store) ClearStage() error {
	return removeAll(s.StageDir())
}
