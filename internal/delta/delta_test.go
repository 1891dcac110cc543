package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvc/art/internal/models"
)

func TestCompute_IdenticalStrings(t *testing.T) {
	assert.Nil(t, Compute("hello", "hello"))
	assert.Nil(t, Compute("", ""))
}

func TestCompute_CaseChangeAtStart(t *testing.T) {
	ops := Compute("hello\n", "Hello\n")
	require.Len(t, ops, 2)

	assert.Equal(t, models.OpDelete, ops[0].Type)
	assert.Equal(t, 0, ops[0].Position)
	assert.Equal(t, 1, ops[0].Length)

	assert.Equal(t, models.OpInsert, ops[1].Type)
	assert.Equal(t, 0, ops[1].Position)
	assert.Equal(t, "H", ops[1].Content)
}

func TestCompute_EditAtLastOffset(t *testing.T) {
	ops := Compute("abc", "abd")
	require.Len(t, ops, 2)
	assert.Equal(t, 2, ops[0].Position)
	assert.Equal(t, 1, ops[0].Length)
	assert.Equal(t, "d", ops[1].Content)
}

func TestCompute_EditInMiddle(t *testing.T) {
	ops := Compute("abcde", "abXde")
	require.Len(t, ops, 2)
	assert.Equal(t, 2, ops[0].Position)
	assert.Equal(t, 1, ops[0].Length)
	assert.Equal(t, "X", ops[1].Content)
}

func TestCompute_PureInsert(t *testing.T) {
	ops := Compute("Hello\n", "Hello World\n")
	require.Len(t, ops, 1)
	assert.Equal(t, models.OpInsert, ops[0].Type)
	assert.Equal(t, 5, ops[0].Position)
	assert.Equal(t, " World", ops[0].Content)
}

func TestCompute_PureDelete(t *testing.T) {
	ops := Compute("Hello World\n", "Hello\n")
	require.Len(t, ops, 1)
	assert.Equal(t, models.OpDelete, ops[0].Type)
	assert.Equal(t, 5, ops[0].Position)
	assert.Equal(t, 6, ops[0].Length)
}

func TestApply_RoundTrip(t *testing.T) {
	cases := [][2]string{
		{"hello\n", "Hello\n"},
		{"hello\n", "hey\n"},
		{"", "new content"},
		{"old content", ""},
		{"abc", "abc"},
		{"the quick brown fox", "the slow brown fox"},
		{"line1\nline2\nline3\n", "line1\nline2 changed\nline3\n"},
		{"aaaa", "aa"},
		{"aa", "aaaa"},
	}

	for _, c := range cases {
		ops := Compute(c[0], c[1])
		assert.Equal(t, c[1], Apply(c[0], ops), "round trip %q -> %q", c[0], c[1])
	}
}

func TestApply_ClampsOutOfRange(t *testing.T) {
	ops := []models.Op{
		{Type: models.OpDelete, Position: 2, Length: 100},
		{Type: models.OpInsert, Position: 50, Content: "!"},
	}
	assert.Equal(t, "ab!", Apply("abcdef", ops))
}

func TestTrim_ReportsDifferingSpans(t *testing.T) {
	deleted, added := Trim("hello\n", "hey\n")
	assert.Equal(t, "llo", deleted)
	assert.Equal(t, "y", added)

	deleted, added = Trim("same", "same")
	assert.Empty(t, deleted)
	assert.Empty(t, added)
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("plain text\n")))
	assert.False(t, IsBinary(nil))
	assert.True(t, IsBinary([]byte{0x89, 'P', 'N', 'G', 0x00}))
	assert.True(t, IsBinary([]byte{0x00}))
}
