package core

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// Commit finalizes the staging index into a new commit on the active
// branch: parts are written first, then the master, then the manifest
// and head are advanced, and finally the stage is destroyed.
func Commit(cfg *config.Config, st *store.Store, message string) (*models.Commit, error) {
	if message == "" {
		return nil, fmt.Errorf("commit message must not be empty")
	}

	head, err := st.Head()
	if err != nil {
		return nil, err
	}
	stage, err := st.LoadStage()
	if err != nil {
		return nil, err
	}
	if stage.Len() == 0 {
		return nil, fmt.Errorf("nothing to commit (use \"art add\" to stage changes)")
	}

	branch := head.Active.Branch
	now := time.Now().UnixMilli()
	hash, err := CommitHash(stage, now, message)
	if err != nil {
		return nil, err
	}

	parts, err := st.WriteCommitParts(branch, hash, stage)
	if err != nil {
		return nil, err
	}
	commit := &models.Commit{
		Hash:      hash,
		Message:   message,
		Timestamp: now,
		Parent:    head.Active.Parent,
		Parts:     parts,
	}
	if err := st.WriteCommit(store.ScopeLocal, branch, commit); err != nil {
		return nil, err
	}

	manifest, err := st.LoadManifest(store.ScopeLocal, branch)
	if err != nil {
		return nil, err
	}
	manifest.Commits = append(manifest.Commits, hash)
	if err := st.SaveManifest(store.ScopeLocal, branch, manifest); err != nil {
		return nil, err
	}

	head.Active.Parent = hash
	if err := st.SaveHead(head); err != nil {
		return nil, err
	}
	if err := st.ClearStage(); err != nil {
		return nil, err
	}
	return commit, nil
}

// CommitHash computes the commit identity: SHA-1 over the serialized
// change set, the decimal millisecond timestamp, and the message.
// Deliberately not content-addressed.
func CommitHash(changes *models.ChangeSet, timestampMs int64, message string) (string, error) {
	encoded, err := json.Marshal(changes)
	if err != nil {
		return "", fmt.Errorf("encode changes: %w", err)
	}

	h := sha1.New()
	h.Write(encoded)
	h.Write([]byte(strconv.FormatInt(timestampMs, 10)))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil)), nil
}
