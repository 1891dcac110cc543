package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChange_CreateRoundTrip(t *testing.T) {
	data, err := json.Marshal(CreateChange("hello\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"create","content":"hello\n"}`, string(data))

	var decoded Change
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ChangeCreate, decoded.Kind)
	assert.Equal(t, "hello\n", decoded.Content)
	assert.False(t, decoded.Binary)
}

func TestChange_BinaryCreateRoundTrip(t *testing.T) {
	data, err := json.Marshal(BinaryCreateChange("AAEC"))
	require.NoError(t, err)

	var decoded Change
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ChangeCreate, decoded.Kind)
	assert.True(t, decoded.Binary)
	assert.Equal(t, "AAEC", decoded.Content)
}

func TestChange_DeleteRoundTrip(t *testing.T) {
	data, err := json.Marshal(DeleteChange())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"delete"}`, string(data))

	var decoded Change
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ChangeDelete, decoded.Kind)
}

func TestChange_OpsEncodeAsBareArray(t *testing.T) {
	ops := []Op{
		{Type: OpDelete, Position: 0, Length: 1},
		{Type: OpInsert, Position: 0, Content: "H"},
	}
	data, err := json.Marshal(OpsChange(ops))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"delete","position":0,"length":1},{"type":"insert","position":0,"content":"H"}]`, string(data))

	var decoded Change
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ChangeOps, decoded.Kind)
	require.Len(t, decoded.Ops, 2)
	assert.Equal(t, OpDelete, decoded.Ops[0].Type)
	assert.Equal(t, "H", decoded.Ops[1].Content)
}

func TestChange_UnknownTypeRejected(t *testing.T) {
	var decoded Change
	err := json.Unmarshal([]byte(`{"type":"rename"}`), &decoded)
	assert.Error(t, err)
}

func TestChangeSet_PreservesInsertionOrder(t *testing.T) {
	cs := NewChangeSet()
	cs.Set("z.txt", CreateChange("z"))
	cs.Set("a.txt", CreateChange("a"))
	cs.Set("m.txt", DeleteChange())

	assert.Equal(t, []string{"z.txt", "a.txt", "m.txt"}, cs.Keys())

	// Overwriting keeps the original position.
	cs.Set("a.txt", CreateChange("a2"))
	assert.Equal(t, []string{"z.txt", "a.txt", "m.txt"}, cs.Keys())
	ch, ok := cs.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "a2", ch.Content)
}

func TestChangeSet_JSONRoundTripKeepsOrder(t *testing.T) {
	cs := NewChangeSet()
	cs.Set("b.txt", CreateChange("b"))
	cs.Set("a.txt", OpsChange([]Op{{Type: OpInsert, Position: 0, Content: "x"}}))

	data, err := json.Marshal(cs)
	require.NoError(t, err)

	decoded := NewChangeSet()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"b.txt", "a.txt"}, decoded.Keys())

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestChangeSet_Remove(t *testing.T) {
	cs := NewChangeSet()
	cs.Set("a", CreateChange("a"))
	cs.Set("b", CreateChange("b"))
	cs.Remove("a")

	assert.Equal(t, []string{"b"}, cs.Keys())
	_, ok := cs.Get("a")
	assert.False(t, ok)
	cs.Remove("missing") // no-op
	assert.Equal(t, 1, cs.Len())
}

func TestChangeSet_MergeOverwritesByLastWriter(t *testing.T) {
	a := NewChangeSet()
	a.Set("f.txt", CreateChange("one"))
	b := NewChangeSet()
	b.Set("f.txt", CreateChange("two"))
	b.Set("g.txt", DeleteChange())

	a.Merge(b)
	assert.Equal(t, []string{"f.txt", "g.txt"}, a.Keys())
	ch, _ := a.Get("f.txt")
	assert.Equal(t, "two", ch.Content)
}
