// Package delta computes and applies compact edit scripts between two
// text blobs. Positions are UTF-8 byte offsets; the same offsets are
// used by replay and staging so scripts stay valid across versions.
package delta

import (
	"bytes"

	"github.com/artvc/art/internal/models"
)

// Compute returns the edit script that transforms previous into
// current: at most one delete followed by at most one insert, covering
// the span between the longest common prefix and suffix. Identical
// inputs yield nil.
func Compute(previous, current string) []models.Op {
	start := 0
	for start < len(previous) && start < len(current) && previous[start] == current[start] {
		start++
	}

	oldEnd := len(previous) - 1
	newEnd := len(current) - 1
	for oldEnd >= start && newEnd >= start && previous[oldEnd] == current[newEnd] {
		oldEnd--
		newEnd--
	}

	var ops []models.Op
	if delLen := oldEnd - start + 1; delLen > 0 {
		ops = append(ops, models.Op{Type: models.OpDelete, Position: start, Length: delLen})
	}
	if ins := current[start : newEnd+1]; ins != "" {
		ops = append(ops, models.Op{Type: models.OpInsert, Position: start, Content: ins})
	}
	return ops
}

// Trim returns the differing spans of previous and current: the bytes
// deleted from previous and the bytes added by current. Both are empty
// when the inputs are equal.
func Trim(previous, current string) (deleted, added string) {
	ops := Compute(previous, current)
	for _, op := range ops {
		switch op.Type {
		case models.OpDelete:
			deleted = previous[op.Position : op.Position+op.Length]
		case models.OpInsert:
			added = op.Content
		}
	}
	return deleted, added
}

// Apply replays an edit script over content. Out-of-range positions
// are clamped so a script computed against a different base degrades
// instead of panicking.
func Apply(content string, ops []models.Op) string {
	for _, op := range ops {
		pos := op.Position
		if pos > len(content) {
			pos = len(content)
		}
		switch op.Type {
		case models.OpInsert:
			content = content[:pos] + op.Content + content[pos:]
		case models.OpDelete:
			end := pos + op.Length
			if end > len(content) {
				end = len(content)
			}
			content = content[:pos] + content[end:]
		}
	}
	return content
}

// IsBinary reports whether raw content should be treated as binary:
// any NUL byte marks it so.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}
