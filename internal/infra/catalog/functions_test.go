package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionRegistry(t *testing.T) {
	functions := NewFunctionRegistry()
	require.NoError(t, functions.Register("b", echo))
	require.NoError(t, functions.Register("a", echo))

	require.Error(t, functions.Register("a", echo))
	require.Error(t, functions.Register("", echo))
	require.Error(t, functions.Register("c", nil))

	_, ok := functions.Resolve("a")
	assert.True(t, ok)
	_, ok = functions.Resolve("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, functions.Keys())
}
