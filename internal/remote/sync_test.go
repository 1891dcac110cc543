package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/models"
)

func TestResolve_SlugAgainstUserHost(t *testing.T) {
	head := models.NewHeadState("main")
	head.Remote = "alice/project"
	user := &config.UserConfig{Host: "http://localhost:1337", Token: "tok"}

	client, err := Resolve(head, user)
	require.NoError(t, err)

	rc, ok := client.(*RetryClient)
	require.True(t, ok)
	hc, ok := rc.inner.(*HTTPClient)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:1337", hc.baseURL)
	assert.Equal(t, "alice/project", hc.repo)
	assert.Equal(t, "tok", hc.token)
}

func TestResolve_FullURL(t *testing.T) {
	head := models.NewHeadState("main")
	head.Remote = "https://art.example.com/alice/project"
	head.Configuration["token"] = "repo-token"
	user := &config.UserConfig{Host: "http://localhost:1337"}

	client, err := Resolve(head, user)
	require.NoError(t, err)

	hc := client.(*RetryClient).inner.(*HTTPClient)
	assert.Equal(t, "https://art.example.com", hc.baseURL)
	assert.Equal(t, "alice/project", hc.repo)
	assert.Equal(t, "repo-token", hc.token, "repository token wins over user token")
}

func TestResolve_Errors(t *testing.T) {
	user := &config.UserConfig{Host: "http://localhost:1337"}

	head := models.NewHeadState("main")
	_, err := Resolve(head, user)
	assert.ErrorContains(t, err, "no remote configured")

	head.Remote = "just-a-name"
	_, err = Resolve(head, user)
	assert.ErrorContains(t, err, "malformed slug")

	head.Remote = "a/b/c"
	_, err = Resolve(head, user)
	assert.ErrorContains(t, err, "malformed slug")
}

func TestIsPrefix(t *testing.T) {
	assert.True(t, isPrefix(nil, []string{"a"}))
	assert.True(t, isPrefix([]string{"a"}, []string{"a", "b"}))
	assert.True(t, isPrefix([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, isPrefix([]string{"a", "x"}, []string{"a", "b"}))
	assert.False(t, isPrefix([]string{"a", "b"}, []string{"a"}))
}
