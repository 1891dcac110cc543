package remote

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/artvc/art/internal/models"
)

// RetryConfig configures retry behavior for transient errors.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64 // 0.0 to 1.0
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		JitterFraction: 0.25,
	}
}

// RetryClient wraps a Client with automatic retry on transient errors.
type RetryClient struct {
	inner  Client
	config *RetryConfig
}

// NewRetryClient creates a RetryClient around the given Client.
func NewRetryClient(inner Client, cfg *RetryConfig) *RetryClient {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	return &RetryClient{inner: inner, config: cfg}
}

// isTransient returns true for errors worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status >= 500 || re.Status == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true // network errors are transient
}

// retry runs op, backing off exponentially with jitter on transient
// failures.
func (c *RetryClient) retry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || !isTransient(err) || attempt >= c.config.MaxRetries {
			return err
		}

		backoff := time.Duration(float64(c.config.InitialBackoff) * math.Pow(2, float64(attempt)))
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
		jitter := time.Duration(rand.Float64() * c.config.JitterFraction * float64(backoff))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}
}

func (c *RetryClient) GetRepoInfo(ctx context.Context) (*RepoInfo, error) {
	var info *RepoInfo
	err := c.retry(ctx, func() (e error) {
		info, e = c.inner.GetRepoInfo(ctx)
		return
	})
	return info, err
}

func (c *RetryClient) ListBranches(ctx context.Context) ([]string, error) {
	var names []string
	err := c.retry(ctx, func() (e error) {
		names, e = c.inner.ListBranches(ctx)
		return
	})
	return names, err
}

func (c *RetryClient) GetBranch(ctx context.Context, name string) (*models.BranchManifest, error) {
	var manifest *models.BranchManifest
	err := c.retry(ctx, func() (e error) {
		manifest, e = c.inner.GetBranch(ctx, name)
		return
	})
	return manifest, err
}

func (c *RetryClient) UpdateBranch(ctx context.Context, name string, manifest *models.BranchManifest, expectedTip string) error {
	return c.retry(ctx, func() error {
		return c.inner.UpdateBranch(ctx, name, manifest, expectedTip)
	})
}

func (c *RetryClient) NegotiatePush(ctx context.Context, branch string, commits []string) (*NegotiateResponse, error) {
	var resp *NegotiateResponse
	err := c.retry(ctx, func() (e error) {
		resp, e = c.inner.NegotiatePush(ctx, branch, commits)
		return
	})
	return resp, err
}

func (c *RetryClient) NegotiatePull(ctx context.Context, branch, localTip string) (*NegotiateResponse, error) {
	var resp *NegotiateResponse
	err := c.retry(ctx, func() (e error) {
		resp, e = c.inner.NegotiatePull(ctx, branch, localTip)
		return
	})
	return resp, err
}

func (c *RetryClient) DownloadBundle(ctx context.Context, hash string) (*CommitBundle, error) {
	var bundle *CommitBundle
	err := c.retry(ctx, func() (e error) {
		bundle, e = c.inner.DownloadBundle(ctx, hash)
		return
	})
	return bundle, err
}

func (c *RetryClient) UploadBundle(ctx context.Context, bundle *CommitBundle) error {
	return c.retry(ctx, func() error {
		return c.inner.UploadBundle(ctx, bundle)
	})
}

func (c *RetryClient) DownloadRoot(ctx context.Context) (*RootBundle, error) {
	var bundle *RootBundle
	err := c.retry(ctx, func() (e error) {
		bundle, e = c.inner.DownloadRoot(ctx)
		return
	})
	return bundle, err
}

func (c *RetryClient) UploadRoot(ctx context.Context, bundle *RootBundle) error {
	return c.retry(ctx, func() error {
		return c.inner.UploadRoot(ctx, bundle)
	})
}
