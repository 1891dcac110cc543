package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChangeSet is a path-keyed change mapping that preserves insertion
// order. Order matters twice: the paginated store splits parts by
// iterating in insertion order, and the commit hash covers the
// serialized set, so encoding must be deterministic.
type ChangeSet struct {
	keys []string
	m    map[string]Change
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{m: make(map[string]Change)}
}

// Set adds or overwrites the change for a path. A new path is appended
// to the iteration order; an existing path keeps its position.
func (cs *ChangeSet) Set(path string, ch Change) {
	if _, ok := cs.m[path]; !ok {
		cs.keys = append(cs.keys, path)
	}
	cs.m[path] = ch
}

// Get returns the change for a path.
func (cs *ChangeSet) Get(path string) (Change, bool) {
	ch, ok := cs.m[path]
	return ch, ok
}

// Remove deletes a path from the set.
func (cs *ChangeSet) Remove(path string) {
	if _, ok := cs.m[path]; !ok {
		return
	}
	delete(cs.m, path)
	for i, k := range cs.keys {
		if k == path {
			cs.keys = append(cs.keys[:i], cs.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (cs *ChangeSet) Len() int {
	return len(cs.keys)
}

// Keys returns the paths in insertion order. The slice is shared; do
// not mutate it.
func (cs *ChangeSet) Keys() []string {
	return cs.keys
}

// Merge copies every entry of other into cs, preserving other's order
// for new paths.
func (cs *ChangeSet) Merge(other *ChangeSet) {
	for _, k := range other.keys {
		cs.Set(k, other.m[k])
	}
}

// MarshalJSON encodes the set as a JSON object in insertion order.
func (cs *ChangeSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range cs.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(cs.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving its key order.
func (cs *ChangeSet) UnmarshalJSON(data []byte) error {
	cs.keys = nil
	cs.m = make(map[string]Change)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("change set: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("change set: non-string key %v", keyTok)
		}
		var ch Change
		if err := dec.Decode(&ch); err != nil {
			return fmt.Errorf("change set entry %q: %w", key, err)
		}
		cs.Set(key, ch)
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
