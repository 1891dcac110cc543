package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzip"

	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/remote"
	"github.com/artvc/art/internal/remote/blobstore"
	"github.com/artvc/art/internal/remote/metastore"
)

// RepoOpener returns the MetaStore and BlobStore for a repo slug.
type RepoOpener interface {
	Open(name string) (metastore.MetaStore, blobstore.BlobStore, error)
}

// ServerConfig holds configurable limits for the server.
type ServerConfig struct {
	MaxRequestBody int64  // bytes, decompressed
	Token          string // bearer token; empty disables auth
}

// DefaultServerConfig returns reasonable defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		MaxRequestBody: 256 * 1024 * 1024, // 256MB
	}
}

// Handler creates the HTTP handler with all routes and middleware.
func Handler(repos RepoOpener, cfg *ServerConfig, logger *slog.Logger) http.Handler {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{repos: repos, cfg: cfg, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/v1/repos/{repo}/info", h.repoHandler(h.handleInfo))
	mux.HandleFunc("GET /api/v1/repos/{repo}/branches", h.repoHandler(h.handleListBranches))
	mux.HandleFunc("GET /api/v1/repos/{repo}/branches/{name}", h.repoHandler(h.handleGetBranch))
	mux.HandleFunc("PUT /api/v1/repos/{repo}/branches/{name}", h.repoHandler(h.handleUpdateBranch))
	mux.HandleFunc("POST /api/v1/repos/{repo}/negotiate/push", h.repoHandler(h.handleNegotiatePush))
	mux.HandleFunc("POST /api/v1/repos/{repo}/negotiate/pull", h.repoHandler(h.handleNegotiatePull))
	mux.HandleFunc("GET /api/v1/repos/{repo}/commits/{hash}/bundle", h.repoHandler(h.handleGetBundle))
	mux.HandleFunc("POST /api/v1/repos/{repo}/commits/{hash}/bundle", h.repoHandler(h.handlePostBundle))
	mux.HandleFunc("GET /api/v1/repos/{repo}/root", h.repoHandler(h.handleGetRoot))
	mux.HandleFunc("POST /api/v1/repos/{repo}/root", h.repoHandler(h.handlePostRoot))

	return applyMiddleware(mux,
		requestIDMiddleware,
		loggingMiddleware(logger),
		recoveryMiddleware(logger),
		authMiddleware(cfg.Token),
	)
}

type handlers struct {
	repos  RepoOpener
	cfg    *ServerConfig
	logger *slog.Logger
}

type repoHandlerFunc func(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, blobs blobstore.BlobStore)

// repoHandler resolves the repo slug and opens its stores.
func (h *handlers) repoHandler(fn repoHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := r.PathValue("repo")
		meta, blobs, err := h.repos.Open(repo)
		if err != nil {
			writeError(w, http.StatusNotFound, "repo_not_found", fmt.Sprintf("repository '%s' not found", repo))
			return
		}
		fn(w, r, meta, blobs)
	}
}

func (h *handlers) handleInfo(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, _ blobstore.BlobStore) {
	branches, commits, err := meta.Counts()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remote.RepoInfo{BranchCount: branches, CommitCount: commits})
}

func (h *handlers) handleListBranches(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, _ blobstore.BlobStore) {
	names, err := meta.ListBranches()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *handlers) handleGetBranch(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, _ blobstore.BlobStore) {
	manifest, err := meta.GetBranch(r.PathValue("name"))
	if errors.Is(err, metastore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "branch_not_found", "branch not found")
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func (h *handlers) handleUpdateBranch(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, _ blobstore.BlobStore) {
	var req remote.BranchUpdateRequest
	if !decodeJSONBody(w, r, h.cfg.MaxRequestBody, &req) {
		return
	}

	manifest := &models.BranchManifest{Commits: req.Commits}
	err := meta.UpdateBranch(r.PathValue("name"), manifest, req.ExpectedTip)
	if errors.Is(err, metastore.ErrTipMismatch) {
		writeError(w, http.StatusConflict, "tip_mismatch", "branch tip has moved; fetch first")
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleNegotiatePush(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, _ blobstore.BlobStore) {
	var req remote.NegotiateRequest
	if !decodeJSONBody(w, r, h.cfg.MaxRequestBody, &req) {
		return
	}

	resp := remote.NegotiateResponse{MissingCommits: []string{}}
	if manifest, err := meta.GetBranch(req.Branch); err == nil {
		resp.RemoteTip = manifest.Tip()
	}
	for _, hash := range req.Commits {
		has, err := meta.HasCommit(hash)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		if !has {
			resp.MissingCommits = append(resp.MissingCommits, hash)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleNegotiatePull(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, _ blobstore.BlobStore) {
	var req remote.NegotiateRequest
	if !decodeJSONBody(w, r, h.cfg.MaxRequestBody, &req) {
		return
	}

	manifest, err := meta.GetBranch(req.Branch)
	if errors.Is(err, metastore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "branch_not_found", "branch not found")
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := remote.NegotiateResponse{MissingCommits: []string{}, RemoteTip: manifest.Tip()}
	past := req.LocalTip == ""
	for _, hash := range manifest.Commits {
		if past {
			resp.MissingCommits = append(resp.MissingCommits, hash)
		}
		if hash == req.LocalTip {
			past = true
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleGetBundle(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, blobs blobstore.BlobStore) {
	rec, err := meta.GetCommit(r.PathValue("hash"))
	if errors.Is(err, metastore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "commit_not_found", "commit not found")
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}

	var master models.Commit
	if err := json.Unmarshal(rec.Master, &master); err != nil {
		writeInternalError(w, err)
		return
	}

	bundle := remote.CommitBundle{Master: &master, Parts: make(map[string]json.RawMessage, len(rec.PartHashes))}
	for name, blobHash := range rec.PartHashes {
		payload, err := blobs.Get(blobHash)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		bundle.Parts[name] = payload
	}
	writeGzipJSON(w, bundle)
}

func (h *handlers) handlePostBundle(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, blobs blobstore.BlobStore) {
	var bundle remote.CommitBundle
	if !decodeJSONBody(w, r, h.cfg.MaxRequestBody, &bundle) {
		return
	}
	if bundle.Master == nil || bundle.Master.Hash != r.PathValue("hash") {
		writeError(w, http.StatusBadRequest, "bad_bundle", "bundle master missing or hash mismatch")
		return
	}

	rec := &metastore.CommitRecord{PartHashes: make(map[string]string, len(bundle.Parts))}
	for _, name := range bundle.Master.Parts {
		payload, ok := bundle.Parts[name]
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_bundle", fmt.Sprintf("bundle is missing part %s", name))
			return
		}
		blobHash, err := blobs.Put(payload)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		rec.PartHashes[name] = blobHash
	}

	master, err := json.Marshal(bundle.Master)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	rec.Master = master

	if err := meta.PutCommit(bundle.Master.Hash, rec); err != nil {
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *handlers) handleGetRoot(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, blobs blobstore.BlobStore) {
	rec, err := meta.GetRoot()
	if errors.Is(err, metastore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "root_not_found", "root snapshot not found")
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}

	bundle := remote.RootBundle{Manifest: rec.Manifest, Parts: make(map[string]json.RawMessage, len(rec.PartHashes))}
	for name, blobHash := range rec.PartHashes {
		payload, err := blobs.Get(blobHash)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		bundle.Parts[name] = payload
	}
	writeGzipJSON(w, bundle)
}

func (h *handlers) handlePostRoot(w http.ResponseWriter, r *http.Request, meta metastore.MetaStore, blobs blobstore.BlobStore) {
	var bundle remote.RootBundle
	if !decodeJSONBody(w, r, h.cfg.MaxRequestBody, &bundle) {
		return
	}

	rec := &metastore.RootRecord{Manifest: bundle.Manifest, PartHashes: make(map[string]string, len(bundle.Parts))}
	for _, name := range bundle.Manifest {
		payload, ok := bundle.Parts[name]
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_bundle", fmt.Sprintf("root bundle is missing part %s", name))
			return
		}
		blobHash, err := blobs.Put(payload)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		rec.PartHashes[name] = blobHash
	}

	if err := meta.PutRoot(rec); err != nil {
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// decodeJSONBody reads a bounded, possibly gzip-encoded JSON body.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) bool {
	var reader io.Reader = http.MaxBytesReader(w, r.Body, limit)
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_encoding", "malformed gzip body")
			return false
		}
		defer gz.Close()
		reader = http.MaxBytesReader(w, gz, limit)
	}
	if err := json.NewDecoder(reader).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("malformed request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeGzipJSON sends a gzip-compressed JSON body.
func writeGzipJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Encoding", "gzip")
	gz := gzip.NewWriter(w)
	defer gz.Close()
	json.NewEncoder(gz).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, remote.ErrorResponse{Error: code, Message: message})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
