package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIgnoreFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFile), []byte(content), 0644))
}

func TestMatcher_NoIgnoreFile(t *testing.T) {
	m := NewMatcher(t.TempDir())
	assert.False(t, m.Match("anything.txt", false))
}

func TestMatcher_GlobPatterns(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "*.log\n# a comment\n\ntmp\n")
	m := NewMatcher(dir)

	assert.True(t, m.Match("debug.log", false))
	assert.True(t, m.Match("nested/dir/error.log", false))
	assert.False(t, m.Match("debug.txt", false))
	assert.True(t, m.Match("tmp", false))
	assert.True(t, m.Match("sub/tmp", false))
}

func TestMatcher_DirectoryOnlyPattern(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "build/\n")
	m := NewMatcher(dir)

	assert.True(t, m.Match("build", true))
	assert.True(t, m.Match("build/output.bin", false), "files under an ignored directory are ignored")
	assert.False(t, m.Match("build", false), "a plain file named like the directory is not")
}

func TestMatcher_AnchoredPattern(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "/secret.txt\n")
	m := NewMatcher(dir)

	assert.True(t, m.Match("secret.txt", false))
	assert.False(t, m.Match("sub/secret.txt", false))
}

func TestMatcher_LoadsOnce(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "*.log\n")
	m := NewMatcher(dir)
	require.True(t, m.Match("a.log", false))

	// Rules are memoized per handle; rewriting the file does not
	// change an already-loaded matcher.
	writeIgnoreFile(t, dir, "")
	assert.True(t, m.Match("a.log", false))

	fresh := NewMatcher(dir)
	assert.False(t, fresh.Match("a.log", false))
}
