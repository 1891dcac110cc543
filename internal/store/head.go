package store

import (
	"fmt"
	"os"

	"github.com/artvc/art/internal/models"
)

// Head reads the head state. A missing head file means the directory
// is not a repository.
func (s *Store) Head() (*models.HeadState, error) {
	var head models.HeadState
	err := readJSON(s.HeadPath(), &head)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("not an art repository (missing %s)", HeadFileName)
	}
	if err != nil {
		return nil, err
	}
	if head.Configuration == nil {
		head.Configuration = make(map[string]string)
	}
	return &head, nil
}

// SaveHead persists the head state atomically.
func (s *Store) SaveHead(head *models.HeadState) error {
	return writeJSONAtomic(s.HeadPath(), head)
}

// IsRepository reports whether the head file exists.
func (s *Store) IsRepository() bool {
	_, err := os.Stat(s.HeadPath())
	return err == nil
}
