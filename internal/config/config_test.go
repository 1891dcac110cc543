package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot_WalksUpward(t *testing.T) {
	root := t.TempDir()
	artDir := filepath.Join(root, ArtDir)
	require.NoError(t, os.MkdirAll(artDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(artDir, HeadFile), []byte("{}"), 0644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	found, err := FindRoot()
	require.NoError(t, err)

	// Temp dirs may sit behind symlinks; compare resolved paths.
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, wantResolved, gotResolved)
}

func TestFindRoot_NotARepository(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := FindRoot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an art repository")
}

func TestForWorkTree_Paths(t *testing.T) {
	cfg := ForWorkTree("/work/project")
	assert.Equal(t, "/work/project", cfg.WorkTree())
	assert.Equal(t, filepath.Join("/work/project", ArtDir), cfg.ArtPath())
}

func TestLoadUserConfig_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Empty(t, cfg.Token)
}

func TestUserConfig_SaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, SaveUserConfig(&UserConfig{Host: "http://art.example.com", Token: "tok"}))

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://art.example.com", cfg.Host)
	assert.Equal(t, "tok", cfg.Token)
}
