package record

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, dec Decoder) []Record {
	t.Helper()
	var out []Record
	for {
		v, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, v)
	}
}

func TestIonCodec_RoundTrip(t *testing.T) {
	codec := IonCodec{}
	var buf bytes.Buffer

	enc := codec.NewEncoder(&buf)
	require.NoError(t, enc.Encode(map[string]any{"id": "a", "ok": true}))
	require.NoError(t, enc.Encode(map[string]any{"id": "b", "ok": false}))
	require.NoError(t, enc.Flush())

	// one top-level value per line
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	got := drain(t, codec.NewDecoder(&buf))
	require.Len(t, got, 2)
	first, ok := got[0].(map[string]any)
	require.True(t, ok, "ion struct should decode to a map, got %T", got[0])
	assert.Equal(t, "a", first["id"])
	assert.Equal(t, true, first["ok"])
}

func TestIonCodec_EmptyStream(t *testing.T) {
	dec := IonCodec{}.NewDecoder(strings.NewReader(""))
	_, err := dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestIonCodec_MalformedInput(t *testing.T) {
	dec := IonCodec{}.NewDecoder(strings.NewReader("{id:"))
	_, err := dec.Decode()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestJSONLCodec_RoundTrip(t *testing.T) {
	codec := JSONLCodec{}
	var buf bytes.Buffer

	enc := codec.NewEncoder(&buf)
	require.NoError(t, enc.Encode(map[string]any{"id": "a"}))
	require.NoError(t, enc.Encode([]any{"x", "y"}))
	require.NoError(t, enc.Encode("scalar"))
	require.NoError(t, enc.Flush())

	got := drain(t, codec.NewDecoder(&buf))
	require.Len(t, got, 3)
	first, ok := got[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a", first["id"])
	assert.Equal(t, "scalar", got[2])
}

func TestJSONLCodec_MalformedInput(t *testing.T) {
	dec := JSONLCodec{}.NewDecoder(strings.NewReader(`{"id": `))
	_, err := dec.Decode()
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	_, err := New("nope")
	require.Error(t, err)

	Register("test-ion", func() Codec { return IonCodec{} })
	c, err := New("test-ion")
	require.NoError(t, err)
	assert.Equal(t, "ion", c.Name())
	assert.Equal(t, ".ion", c.Ext())
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("cause")
	var de error = &DecodeError{Err: cause}
	assert.ErrorIs(t, de, cause)
	assert.Contains(t, de.Error(), "decode")

	var ee error = &EncodeError{Err: cause}
	assert.ErrorIs(t, ee, cause)
	assert.Contains(t, ee.Error(), "encode")
}
