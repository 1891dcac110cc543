package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/core"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/store"
)

// transferConcurrency bounds parallel bundle transfers.
const transferConcurrency = 4

// Resolve builds a retrying client from the repository's configured
// remote. A bare "owner/name" slug resolves against the user-level
// host; a full URL carries the slug in its path.
func Resolve(head *models.HeadState, user *config.UserConfig) (Client, error) {
	if head.Remote == "" {
		return nil, errors.New("no remote configured (use \"art remote <url>\")")
	}

	base, repo := user.Host, head.Remote
	if strings.Contains(head.Remote, "://") {
		u := strings.TrimSuffix(head.Remote, "/")
		idx := strings.Index(u, "://")
		slash := strings.Index(u[idx+3:], "/")
		if slash < 0 {
			return nil, fmt.Errorf("malformed remote URL '%s' (expected host/owner/name)", head.Remote)
		}
		base = u[:idx+3+slash]
		repo = u[idx+3+slash+1:]
	}
	if strings.Count(repo, "/") != 1 {
		return nil, fmt.Errorf("malformed slug '%s' (expected owner/name)", repo)
	}

	token := head.Configuration["token"]
	if token == "" {
		token = user.Token
	}
	return NewRetryClient(NewHTTPClient(base, repo, token), nil), nil
}

// FetchResult summarizes a fetch.
type FetchResult struct {
	Branches []string
	Commits  int
}

// Fetch downloads every server branch manifest plus missing commit
// bundles into the remote mirror. The local history is never touched.
func Fetch(ctx context.Context, cfg *config.Config, st *store.Store, client Client) (*FetchResult, error) {
	names, err := client.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list remote branches: %w", err)
	}
	sort.Strings(names)

	result := &FetchResult{}
	for _, name := range names {
		count, err := fetchBranch(ctx, st, client, name)
		if err != nil {
			return nil, err
		}
		result.Branches = append(result.Branches, name)
		result.Commits += count
	}
	return result, nil
}

// fetchBranch mirrors one branch: missing bundles are downloaded in
// parallel, then the mirror manifest is written last.
func fetchBranch(ctx context.Context, st *store.Store, client Client, name string) (int, error) {
	manifest, err := client.GetBranch(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("fetch branch %s: %w", name, err)
	}

	dir := st.BranchDir(store.ScopeRemote, name)
	var missing []string
	for _, hash := range manifest.Commits {
		if _, err := os.Stat(filepath.Join(dir, hash+".json")); os.IsNotExist(err) {
			missing = append(missing, hash)
		}
	}

	var mu sync.Mutex
	fetched := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferConcurrency)
	for _, hash := range missing {
		g.Go(func() error {
			bundle, err := client.DownloadBundle(gctx, hash)
			if err != nil {
				return fmt.Errorf("download commit %s: %w", hash, err)
			}
			if err := writeBundle(dir, bundle); err != nil {
				return err
			}
			mu.Lock()
			fetched++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := st.SaveManifest(store.ScopeRemote, name, manifest); err != nil {
		return 0, err
	}
	return fetched, nil
}

// writeBundle materializes a commit bundle in a branch directory:
// parts first, master last.
func writeBundle(dir string, bundle *CommitBundle) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create branch dir: %w", err)
	}
	for _, name := range bundle.Master.Parts {
		payload, ok := bundle.Parts[name]
		if !ok {
			return fmt.Errorf("bundle %s is missing part %s", bundle.Master.Hash, name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0644); err != nil {
			return fmt.Errorf("write part %s: %w", name, err)
		}
	}

	data, err := json.MarshalIndent(bundle.Master, "", "  ")
	if err != nil {
		return fmt.Errorf("encode master %s: %w", bundle.Master.Hash, err)
	}
	if err := os.WriteFile(filepath.Join(dir, bundle.Master.Hash+".json"), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write master %s: %w", bundle.Master.Hash, err)
	}
	return nil
}

// readBundle assembles a commit bundle from a local branch directory.
func readBundle(st *store.Store, branch, hash string) (*CommitBundle, error) {
	master, err := st.ReadCommit(store.ScopeLocal, branch, hash)
	if err != nil {
		return nil, err
	}
	dir := st.BranchDir(store.ScopeLocal, branch)

	bundle := &CommitBundle{Master: master, Parts: make(map[string]json.RawMessage, len(master.Parts))}
	for _, name := range master.Parts {
		payload, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", name, err)
		}
		bundle.Parts[name] = payload
	}
	return bundle, nil
}

// PushResult summarizes a push.
type PushResult struct {
	Branch   string
	Pushed   int
	UpToDate bool
}

// Push uploads the active branch's missing commits and advances the
// server's branch pointer with a compare-and-swap. A server holding
// commits the local manifest lacks rejects the push.
func Push(ctx context.Context, cfg *config.Config, st *store.Store, client Client, branch string) (*PushResult, error) {
	manifest, err := st.LoadManifest(store.ScopeLocal, branch)
	if err != nil {
		return nil, err
	}
	if len(manifest.Commits) == 0 {
		return nil, fmt.Errorf("nothing to push on branch '%s'", branch)
	}

	neg, err := client.NegotiatePush(ctx, branch, manifest.Commits)
	if err != nil {
		return nil, fmt.Errorf("negotiate push: %w", err)
	}
	if neg.RemoteTip != "" && !manifest.Contains(neg.RemoteTip) {
		return nil, fmt.Errorf("remote branch '%s' has diverged; fetch and merge first", branch)
	}
	if neg.RemoteTip == manifest.Tip() {
		return &PushResult{Branch: branch, UpToDate: true}, nil
	}

	// First push seeds the server with the root snapshot, which every
	// clone replays from.
	if neg.RemoteTip == "" {
		rootBundle, err := ReadRootBundle(st)
		if err != nil {
			return nil, err
		}
		if err := client.UploadRoot(ctx, rootBundle); err != nil {
			return nil, fmt.Errorf("upload root snapshot: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferConcurrency)
	for _, hash := range neg.MissingCommits {
		g.Go(func() error {
			bundle, err := readBundle(st, branch, hash)
			if err != nil {
				return err
			}
			if err := client.UploadBundle(gctx, bundle); err != nil {
				return fmt.Errorf("upload commit %s: %w", hash, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := client.UpdateBranch(ctx, branch, manifest, neg.RemoteTip); err != nil {
		return nil, fmt.Errorf("update remote branch: %w", err)
	}

	// Refresh the mirror: manifest plus masters and parts, so branch
	// creation can fall back to it.
	srcDir := st.BranchDir(store.ScopeLocal, branch)
	dstDir := st.BranchDir(store.ScopeRemote, branch)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return nil, fmt.Errorf("create mirror dir: %w", err)
	}
	for _, hash := range manifest.Commits {
		master, err := st.ReadCommit(store.ScopeLocal, branch, hash)
		if err != nil {
			return nil, fmt.Errorf("read master %s: %w", hash, err)
		}
		for _, name := range append([]string{hash + ".json"}, master.Parts...) {
			data, err := os.ReadFile(filepath.Join(srcDir, name))
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			if err := os.WriteFile(filepath.Join(dstDir, name), data, 0644); err != nil {
				return nil, fmt.Errorf("mirror %s: %w", name, err)
			}
		}
	}
	mirror := &models.BranchManifest{Commits: append([]string{}, manifest.Commits...)}
	if err := st.SaveManifest(store.ScopeRemote, branch, mirror); err != nil {
		return nil, err
	}

	return &PushResult{Branch: branch, Pushed: len(neg.MissingCommits)}, nil
}

// PullResult summarizes a pull.
type PullResult struct {
	Branch   string
	Commits  int
	UpToDate bool
}

// Pull fetches one branch and fast-forwards the local history when
// the local commit list is a prefix of the remote list. Diverged
// histories fail, advising a merge.
func Pull(ctx context.Context, cfg *config.Config, st *store.Store, client Client, branch string) (*PullResult, error) {
	if _, err := fetchBranch(ctx, st, client, branch); err != nil {
		return nil, err
	}

	remoteManifest, err := st.LoadManifest(store.ScopeRemote, branch)
	if err != nil {
		return nil, err
	}
	local, err := st.LoadManifest(store.ScopeLocal, branch)
	if err != nil {
		return nil, err
	}

	if !isPrefix(local.Commits, remoteManifest.Commits) {
		return nil, fmt.Errorf("local and remote histories for '%s' have diverged; merge required", branch)
	}
	if len(local.Commits) == len(remoteManifest.Commits) {
		return &PullResult{Branch: branch, UpToDate: true}, nil
	}

	incoming := remoteManifest.Commits[len(local.Commits):]
	srcDir := st.BranchDir(store.ScopeRemote, branch)
	dstDir := st.BranchDir(store.ScopeLocal, branch)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return nil, fmt.Errorf("create branch dir: %w", err)
	}
	for _, hash := range incoming {
		master, err := st.ReadCommit(store.ScopeRemote, branch, hash)
		if err != nil {
			return nil, err
		}
		for _, name := range append([]string{hash + ".json"}, master.Parts...) {
			data, err := os.ReadFile(filepath.Join(srcDir, name))
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			if err := os.WriteFile(filepath.Join(dstDir, name), data, 0644); err != nil {
				return nil, fmt.Errorf("write %s: %w", name, err)
			}
		}
	}

	updated := &models.BranchManifest{Commits: append([]string{}, remoteManifest.Commits...)}
	if err := st.SaveManifest(store.ScopeLocal, branch, updated); err != nil {
		return nil, err
	}

	head, err := st.Head()
	if err != nil {
		return nil, err
	}
	if head.Active.Branch == branch {
		head.Active.Parent = updated.Tip()
		if err := st.SaveHead(head); err != nil {
			return nil, err
		}
		if _, err := core.Checkout(cfg, st, branch, core.CheckoutOptions{Force: true}); err != nil {
			return nil, err
		}
	}

	return &PullResult{Branch: branch, Commits: len(incoming)}, nil
}

// Clone materializes a remote repository into dest, which must not
// already exist.
func Clone(ctx context.Context, dest, slug string, client Client) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("destination '%s' already exists", dest)
	}

	cfg := config.ForWorkTree(dest)
	if err := os.MkdirAll(cfg.ArtPath(), 0755); err != nil {
		return fmt.Errorf("create %s: %w", config.ArtDir, err)
	}
	st, err := store.Open(cfg.ArtPath())
	if err != nil {
		return err
	}

	root, err := client.DownloadRoot(ctx)
	if err != nil {
		return fmt.Errorf("download root snapshot: %w", err)
	}
	if err := writeRootBundle(st.RootDir(), root); err != nil {
		return err
	}

	names, err := client.ListBranches(ctx)
	if err != nil {
		return fmt.Errorf("list remote branches: %w", err)
	}
	sort.Strings(names)

	defaultBranch := core.DefaultBranch
	if len(names) > 0 && !contains(names, defaultBranch) {
		defaultBranch = names[0]
	}

	for _, name := range names {
		manifest, err := client.GetBranch(ctx, name)
		if err != nil {
			return fmt.Errorf("fetch branch %s: %w", name, err)
		}
		localDir := st.BranchDir(store.ScopeLocal, name)
		mirrorDir := st.BranchDir(store.ScopeRemote, name)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(transferConcurrency)
		for _, hash := range manifest.Commits {
			g.Go(func() error {
				bundle, err := client.DownloadBundle(gctx, hash)
				if err != nil {
					return fmt.Errorf("download commit %s: %w", hash, err)
				}
				if err := writeBundle(localDir, bundle); err != nil {
					return err
				}
				// Seed the mirror too, so a later fetch only transfers
				// genuinely new commits.
				return writeBundle(mirrorDir, bundle)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if err := st.SaveManifest(store.ScopeLocal, name, manifest); err != nil {
			return err
		}
		mirror := &models.BranchManifest{Commits: append([]string{}, manifest.Commits...)}
		if err := st.SaveManifest(store.ScopeRemote, name, mirror); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		if err := st.SaveManifest(store.ScopeLocal, defaultBranch, &models.BranchManifest{}); err != nil {
			return err
		}
		if err := st.SaveManifest(store.ScopeRemote, defaultBranch, &models.BranchManifest{}); err != nil {
			return err
		}
	}

	manifest, err := st.LoadManifest(store.ScopeLocal, defaultBranch)
	if err != nil {
		return err
	}
	head := models.NewHeadState(defaultBranch)
	head.Active.Parent = manifest.Tip()
	head.Remote = slug
	if owner, _, ok := strings.Cut(slug, "/"); ok {
		head.Configuration["handle"] = owner
	}
	if err := st.SaveHead(head); err != nil {
		return err
	}

	_, err = core.Checkout(cfg, st, defaultBranch, core.CheckoutOptions{Force: true})
	return err
}

// writeRootBundle materializes the root snapshot: parts first,
// manifest last.
func writeRootBundle(dir string, bundle *RootBundle) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create root dir: %w", err)
	}
	for _, name := range bundle.Manifest {
		payload, ok := bundle.Parts[name]
		if !ok {
			return fmt.Errorf("root bundle is missing part %s", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0644); err != nil {
			return fmt.Errorf("write root part %s: %w", name, err)
		}
	}

	manifest := struct {
		Parts []string `json:"parts"`
	}{Parts: bundle.Manifest}
	if manifest.Parts == nil {
		manifest.Parts = []string{}
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write root manifest: %w", err)
	}
	return nil
}

// ReadRootBundle assembles the root snapshot bundle from a repository,
// for push-side root upload.
func ReadRootBundle(st *store.Store) (*RootBundle, error) {
	var manifest struct {
		Parts []string `json:"parts"`
	}
	data, err := os.ReadFile(filepath.Join(st.RootDir(), "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("read root manifest: %w", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse root manifest: %w", err)
	}

	bundle := &RootBundle{Manifest: manifest.Parts, Parts: make(map[string]json.RawMessage, len(manifest.Parts))}
	for _, name := range manifest.Parts {
		payload, err := os.ReadFile(filepath.Join(st.RootDir(), name))
		if err != nil {
			return nil, fmt.Errorf("read root part %s: %w", name, err)
		}
		bundle.Parts[name] = payload
	}
	return bundle, nil
}

func isPrefix(prefix, full []string) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i, h := range prefix {
		if full[i] != h {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
