// Package remote defines the protocol types and HTTP client for
// art-server communication, plus the fetch/pull/push/clone
// orchestration built on them.
package remote

import (
	"encoding/json"

	"github.com/artvc/art/internal/models"
)

// RepoInfo contains summary information about a remote repository.
type RepoInfo struct {
	BranchCount int `json:"branch_count"`
	CommitCount int `json:"commit_count"`
}

// NegotiateRequest is sent by the client to discover which commits the
// other side is missing.
type NegotiateRequest struct {
	Branch   string   `json:"branch"`
	Commits  []string `json:"commits,omitempty"`
	LocalTip string   `json:"local_tip,omitempty"`
}

// NegotiateResponse names the commits to transfer and the server's
// current branch tip.
type NegotiateResponse struct {
	MissingCommits []string `json:"missing_commits"`
	RemoteTip      string   `json:"remote_tip"`
}

// CommitBundle carries a commit master and its part payloads,
// serialized together for transfer. Part order is the master's Parts
// list.
type CommitBundle struct {
	Master *models.Commit             `json:"master"`
	Parts  map[string]json.RawMessage `json:"parts"`
}

// RootBundle carries the root snapshot: the ordered part name list
// and each part's payload.
type RootBundle struct {
	Manifest []string                   `json:"manifest"`
	Parts    map[string]json.RawMessage `json:"parts"`
}

// BranchUpdateRequest is a compare-and-swap update of a branch
// manifest. ExpectedTip must match the server's current tip (empty
// for a new branch) or the update is rejected.
type BranchUpdateRequest struct {
	Commits     []string `json:"commits"`
	ExpectedTip string   `json:"expected_tip"`
}

// ErrorResponse is the structured error format returned by the server.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
