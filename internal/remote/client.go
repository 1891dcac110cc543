package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/artvc/art/internal/models"
)

// ErrNotFound marks a missing remote resource.
var ErrNotFound = errors.New("not found")

// RemoteError is a non-2xx response from the server.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
}

// Client is the contract for communicating with an art-server.
type Client interface {
	GetRepoInfo(ctx context.Context) (*RepoInfo, error)
	ListBranches(ctx context.Context) ([]string, error)
	GetBranch(ctx context.Context, name string) (*models.BranchManifest, error)
	UpdateBranch(ctx context.Context, name string, manifest *models.BranchManifest, expectedTip string) error

	NegotiatePush(ctx context.Context, branch string, commits []string) (*NegotiateResponse, error)
	NegotiatePull(ctx context.Context, branch, localTip string) (*NegotiateResponse, error)

	DownloadBundle(ctx context.Context, hash string) (*CommitBundle, error)
	UploadBundle(ctx context.Context, bundle *CommitBundle) error

	DownloadRoot(ctx context.Context) (*RootBundle, error)
	UploadRoot(ctx context.Context, bundle *RootBundle) error
}

// HTTPClient implements Client over HTTP. Bundle bodies travel
// gzip-compressed.
type HTTPClient struct {
	baseURL    string
	repo       string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTP-based remote client for one
// repository slug ("owner/name").
func NewHTTPClient(baseURL, repo, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		repo:       repo,
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *HTTPClient) repoURL(path string) string {
	return fmt.Sprintf("%s/api/v1/repos/%s%s", c.baseURL, url.PathEscape(c.repo), path)
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// decodeError turns a non-2xx response into a RemoteError, preferring
// the structured body when present.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Message != "" {
		return &RemoteError{Status: resp.StatusCode, Message: er.Message}
	}
	return &RemoteError{Status: resp.StatusCode, Message: resp.Status}
}

func (c *HTTPClient) doJSON(ctx context.Context, method, rawURL string, reqBody, respBody interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, rawURL, body, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	defer resp.Body.Close()

	if respBody == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doGzipJSON posts a gzip-compressed JSON body.
func (c *HTTPClient) doGzipJSON(ctx context.Context, rawURL string, reqBody interface{}) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("compress request: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, rawURL, &buf, map[string]string{
		"Content-Type":     "application/json",
		"Content-Encoding": "gzip",
	})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	resp.Body.Close()
	return nil
}

// getGzipJSON fetches a possibly gzip-encoded JSON resource.
func (c *HTTPClient) getGzipJSON(ctx context.Context, rawURL string, respBody interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, map[string]string{"Accept-Encoding": "gzip"})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("decompress response: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	if err := json.NewDecoder(reader).Decode(respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetRepoInfo fetches summary stats for the repository.
func (c *HTTPClient) GetRepoInfo(ctx context.Context) (*RepoInfo, error) {
	var info RepoInfo
	if err := c.doJSON(ctx, http.MethodGet, c.repoURL("/info"), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListBranches lists the repository's branch names.
func (c *HTTPClient) ListBranches(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.doJSON(ctx, http.MethodGet, c.repoURL("/branches"), nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// GetBranch fetches one branch manifest.
func (c *HTTPClient) GetBranch(ctx context.Context, name string) (*models.BranchManifest, error) {
	var manifest models.BranchManifest
	if err := c.doJSON(ctx, http.MethodGet, c.repoURL("/branches/"+url.PathEscape(name)), nil, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// UpdateBranch performs a compare-and-swap manifest update.
func (c *HTTPClient) UpdateBranch(ctx context.Context, name string, manifest *models.BranchManifest, expectedTip string) error {
	req := BranchUpdateRequest{Commits: manifest.Commits, ExpectedTip: expectedTip}
	return c.doJSON(ctx, http.MethodPut, c.repoURL("/branches/"+url.PathEscape(name)), req, nil)
}

// NegotiatePush asks which of the given commits the server is missing.
func (c *HTTPClient) NegotiatePush(ctx context.Context, branch string, commits []string) (*NegotiateResponse, error) {
	var resp NegotiateResponse
	req := NegotiateRequest{Branch: branch, Commits: commits}
	if err := c.doJSON(ctx, http.MethodPost, c.repoURL("/negotiate/push"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NegotiatePull asks which commits past localTip the server holds.
func (c *HTTPClient) NegotiatePull(ctx context.Context, branch, localTip string) (*NegotiateResponse, error) {
	var resp NegotiateResponse
	req := NegotiateRequest{Branch: branch, LocalTip: localTip}
	if err := c.doJSON(ctx, http.MethodPost, c.repoURL("/negotiate/pull"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadBundle fetches one commit bundle.
func (c *HTTPClient) DownloadBundle(ctx context.Context, hash string) (*CommitBundle, error) {
	var bundle CommitBundle
	if err := c.getGzipJSON(ctx, c.repoURL("/commits/"+url.PathEscape(hash)+"/bundle"), &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// UploadBundle sends one commit bundle. Idempotent on the server.
func (c *HTTPClient) UploadBundle(ctx context.Context, bundle *CommitBundle) error {
	return c.doGzipJSON(ctx, c.repoURL("/commits/"+url.PathEscape(bundle.Master.Hash)+"/bundle"), bundle)
}

// DownloadRoot fetches the root snapshot bundle.
func (c *HTTPClient) DownloadRoot(ctx context.Context) (*RootBundle, error) {
	var bundle RootBundle
	if err := c.getGzipJSON(ctx, c.repoURL("/root"), &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// UploadRoot sends the root snapshot bundle.
func (c *HTTPClient) UploadRoot(ctx context.Context, bundle *RootBundle) error {
	return c.doGzipJSON(ctx, c.repoURL("/root"), bundle)
}
