package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string                 `json:"id"`
	Data map[string]interface{} `json:"data"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := record{ID: "row-1", Data: map[string]interface{}{
		"name":  "A",
		"score": float64(3),
		"tags":  []interface{}{"x", "y"},
	}}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(record{ID: "row-1"}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"id\"")
}

func TestWriterReaderRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	in := record{ID: "row-2", Data: map[string]interface{}{"n": float64(1)}}
	require.NoError(t, MarshalToWriter(&buf, in))

	var out record
	require.NoError(t, UnmarshalFromReader(&buf, &out))
	assert.Equal(t, in, out)
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("scratch")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Zero(t, again.Len())
	PutBuffer(again)
}
