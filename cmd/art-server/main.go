// Command art-server runs the art remote sync server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/artvc/art/internal/remote/blobstore"
	"github.com/artvc/art/internal/remote/metastore"
	"github.com/artvc/art/internal/remote/server"
)

func main() {
	listen := flag.String("listen", envOrDefault("ART_LISTEN", "0.0.0.0:1337"), "Listen address")
	dataDir := flag.String("data-dir", envOrDefault("ART_DATA_DIR", "/var/lib/art-server"), "Data directory")
	token := flag.String("token", os.Getenv("ART_TOKEN"), "Bearer token (empty disables auth)")
	logLevel := flag.String("log-level", envOrDefault("ART_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", envOrDefault("ART_LOG_FORMAT", "json"), "Log format (json, text)")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	reposDir := filepath.Join(*dataDir, "repos")
	if err := os.MkdirAll(reposDir, 0755); err != nil {
		logger.Error("failed to create repos directory", "error", err, "path", reposDir)
		os.Exit(1)
	}

	repos := &diskRepoOpener{
		reposDir: reposDir,
		stores:   make(map[string]*repoEntry),
		logger:   logger,
	}
	defer repos.CloseAll()

	cfg := server.DefaultServerConfig()
	cfg.Token = *token

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.Handler(repos, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("art-server listening", "addr", *listen, "data_dir", *dataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// repoEntry holds the open stores of one repository.
type repoEntry struct {
	meta  metastore.MetaStore
	blobs blobstore.BlobStore
}

// diskRepoOpener lazily opens per-repo stores under reposDir. Repos
// are created on first access.
type diskRepoOpener struct {
	reposDir string
	logger   *slog.Logger

	mu     sync.Mutex
	stores map[string]*repoEntry
}

// Open returns the stores for a repo slug, creating them on demand.
func (o *diskRepoOpener) Open(name string) (metastore.MetaStore, blobstore.BlobStore, error) {
	if !validSlug(name) {
		return nil, nil, fmt.Errorf("invalid repo slug %q", name)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if entry, ok := o.stores[name]; ok {
		return entry.meta, entry.blobs, nil
	}

	dir := filepath.Join(o.reposDir, filepath.FromSlash(name))
	meta, err := metastore.NewBboltStore(filepath.Join(dir, "meta.db"))
	if err != nil {
		return nil, nil, err
	}
	blobs, err := blobstore.NewFSStore(filepath.Join(dir, "blobs"))
	if err != nil {
		meta.Close()
		return nil, nil, err
	}

	o.stores[name] = &repoEntry{meta: meta, blobs: blobs}
	o.logger.Info("opened repository", "repo", name)
	return meta, blobs, nil
}

// CloseAll releases every open metadata store.
func (o *diskRepoOpener) CloseAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for name, entry := range o.stores {
		if err := entry.meta.Close(); err != nil {
			o.logger.Warn("close failed", "repo", name, "error", err)
		}
	}
}

// validSlug accepts "owner/name" with no traversal components.
func validSlug(name string) bool {
	parts := strings.Split(name, "/")
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `\`) {
			return false
		}
	}
	return true
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
