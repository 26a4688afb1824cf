package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name   string            `json:"Name"`
	Labels map[string]string `json:"Labels,omitempty"`
}

func TestEncoderDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf, "").Encode(doc{Name: "a<b>&c"}))
	assert.Contains(t, buf.String(), "a<b>&c")
}

func TestIndentedRoundTrip(t *testing.T) {
	in := doc{Name: "x", Labels: map[string]string{"1": "one"}}
	data, err := MarshalIndent(in, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"Name\"")

	var out doc
	require.NoError(t, NewDecoder(bytes.NewReader(data)).Decode(&out))
	assert.Equal(t, in, out)
}
