package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSet(t *testing.T) {
	t.Run("add is idempotent and keeps insertion order", func(t *testing.T) {
		s := NewIDSet()
		assert.True(t, s.Add("a"))
		assert.True(t, s.Add("b"))
		assert.False(t, s.Add("a"), "re-adding must report no change")
		assert.Equal(t, []string{"a", "b"}, s.Values())
		assert.Equal(t, 2, s.Len())
	})

	t.Run("remove reports membership", func(t *testing.T) {
		s := NewIDSet("a", "b", "c")
		assert.True(t, s.Remove("b"))
		assert.False(t, s.Remove("b"))
		assert.False(t, s.Has("b"))
		assert.Equal(t, []string{"a", "c"}, s.Values())
	})

	t.Run("constructor drops duplicates", func(t *testing.T) {
		s := NewIDSet("a", "b", "a", "c", "b")
		assert.Equal(t, []string{"a", "b", "c"}, s.Values())
	})

	t.Run("values returns a copy", func(t *testing.T) {
		s := NewIDSet("a", "b")
		values := s.Values()
		values[0] = "tampered"
		assert.Equal(t, []string{"a", "b"}, s.Values())
	})

	t.Run("clone is independent", func(t *testing.T) {
		s := NewIDSet("a")
		c := s.Clone()
		c.Add("b")
		assert.False(t, s.Has("b"))
		assert.True(t, c.Has("b"))
	})

	t.Run("equal ignores order", func(t *testing.T) {
		a := NewIDSet("x", "y")
		b := NewIDSet("y", "x")
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(NewIDSet("x")))
		assert.False(t, a.Equal(NewIDSet("x", "z")))
		empty := NewIDSet()
		assert.True(t, empty.Equal(NewIDSet()))
	})
}

func TestIDSetJSON(t *testing.T) {
	t.Run("marshals as a plain array", func(t *testing.T) {
		s := NewIDSet("a", "b")
		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.JSONEq(t, `["a","b"]`, string(data))
	})

	t.Run("zero value marshals as empty array", func(t *testing.T) {
		var s IDSet
		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("round-trips inside a struct", func(t *testing.T) {
		type wrapper struct {
			Folders IDSet `json:"folders"`
		}
		in := wrapper{Folders: NewIDSet("f1", "f2")}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out wrapper
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, []string{"f1", "f2"}, out.Folders.Values())
		assert.True(t, out.Folders.Has("f1"))
	})

	t.Run("unmarshal rebuilds the index", func(t *testing.T) {
		var s IDSet
		require.NoError(t, json.Unmarshal([]byte(`["a","a","b"]`), &s))
		assert.Equal(t, []string{"a", "b"}, s.Values())
		assert.True(t, s.Has("b"))
	})

	t.Run("rejects non-array input", func(t *testing.T) {
		var s IDSet
		assert.Error(t, json.Unmarshal([]byte(`"a"`), &s))
	})
}
