package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChangeKind discriminates the change-entry union.
type ChangeKind int

const (
	// ChangeCreate introduces a file that did not exist in the prior state.
	ChangeCreate ChangeKind = iota
	// ChangeDelete removes a file that existed in the prior state.
	ChangeDelete
	// ChangeOps edits an existing file with an ordered op sequence.
	ChangeOps
)

// OpType represents the type of a single edit operation.
type OpType string

const (
	OpInsert OpType = "insert"
	OpDelete OpType = "delete"
)

// Op is a single character-offset edit. Positions and lengths are
// UTF-8 byte offsets into the file content.
type Op struct {
	Type     OpType `json:"type"`
	Position int    `json:"position"`
	Content  string `json:"content,omitempty"` // insert only
	Length   int    `json:"length,omitempty"`  // delete only
}

// Change is one entry in a commit or stage change set.
//
// The on-disk encoding is either an object with a "type" field
// ("create" carries content, optionally base64 with binary=true;
// "delete" carries nothing) or a bare array of ops.
type Change struct {
	Kind    ChangeKind
	Content string // create: file content; base64 when Binary
	Binary  bool
	Ops     []Op
}

// CreateChange builds a create entry for text content.
func CreateChange(content string) Change {
	return Change{Kind: ChangeCreate, Content: content}
}

// BinaryCreateChange builds a create entry for base64-encoded binary content.
func BinaryCreateChange(encoded string) Change {
	return Change{Kind: ChangeCreate, Content: encoded, Binary: true}
}

// DeleteChange builds a delete entry.
func DeleteChange() Change {
	return Change{Kind: ChangeDelete}
}

// OpsChange builds an edit entry.
func OpsChange(ops []Op) Change {
	return Change{Kind: ChangeOps, Ops: ops}
}

type changeObject struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Binary  bool   `json:"binary,omitempty"`
}

// MarshalJSON encodes the change in its on-disk form.
func (c Change) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ChangeCreate:
		return json.Marshal(changeObject{Type: "create", Content: c.Content, Binary: c.Binary})
	case ChangeDelete:
		return json.Marshal(changeObject{Type: "delete"})
	case ChangeOps:
		return json.Marshal(c.Ops)
	}
	return nil, fmt.Errorf("unknown change kind %d", c.Kind)
}

// UnmarshalJSON accepts either encoding: a tagged object or a bare op array.
func (c *Change) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fmt.Errorf("empty change entry")
	}

	if trimmed[0] == '[' {
		var ops []Op
		if err := json.Unmarshal(data, &ops); err != nil {
			return err
		}
		*c = Change{Kind: ChangeOps, Ops: ops}
		return nil
	}

	var obj changeObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch obj.Type {
	case "create":
		*c = Change{Kind: ChangeCreate, Content: obj.Content, Binary: obj.Binary}
	case "delete":
		*c = Change{Kind: ChangeDelete}
	default:
		return fmt.Errorf("unknown change type %q", obj.Type)
	}
	return nil
}
