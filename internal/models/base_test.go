package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSlice_AddRemove(t *testing.T) {
	orig := StringSlice{"a", "b"}

	added, ok := orig.Add("c")
	assert.True(t, ok)
	assert.Equal(t, StringSlice{"a", "b", "c"}, added)
	assert.Equal(t, StringSlice{"a", "b"}, orig, "Add must not touch the receiver")

	same, ok := added.Add("a")
	assert.False(t, ok)
	assert.Equal(t, added, same)

	removed, ok := added.Remove("b")
	assert.True(t, ok)
	assert.Equal(t, StringSlice{"a", "c"}, removed)

	_, ok = removed.Remove("zzz")
	assert.False(t, ok)
}

func TestStringSlice_Scan(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["x","y"]`)))
	assert.Equal(t, StringSlice{"x", "y"}, s)

	require.NoError(t, s.Scan(`["z"]`))
	assert.Equal(t, StringSlice{"z"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))

	v, err := StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
