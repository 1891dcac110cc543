package models

import (
	"fmt"
	"time"
)

// StashEntry is a display-oriented record of one stash directory.
// Index 0 is the newest stash.
type StashEntry struct {
	Index     int
	DirName   string
	Timestamp int64 // unix milliseconds, parsed from the directory name
}

// ID renders the git-style stash reference ("stash@{0}").
func (s StashEntry) ID() string {
	return fmt.Sprintf("stash@{%d}", s.Index)
}

// Date renders the stash creation time in local time.
func (s StashEntry) Date() string {
	return time.UnixMilli(s.Timestamp).Format("Mon Jan 2 15:04:05 2006")
}
