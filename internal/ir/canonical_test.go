package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysAndSkipsHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"b": "<a&b>",
		"a": []any{1, true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,true],"b":"<a&b>"}`, string(data))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	composed, err := MarshalCanonical("caf\u00e9.jpg")
	require.NoError(t, err)
	decomposed, err := MarshalCanonical("cafe\u0301.jpg")
	require.NoError(t, err)

	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"w": 1.5})
	assert.Error(t, err)
}

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, "caf\u00e9", NormalizeString("cafe\u0301"))
	assert.Equal(t, "plain", NormalizeString("plain"))
}
