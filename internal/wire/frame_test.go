package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	frame, err := Encode("Hello", map[string]any{})
	require.NoError(t, err)

	decoded, err := Decode(bytes.NewReader(frame))
	require.NoError(t, err)
	require.Equal(t, "Hello", decoded.Tag)
	require.JSONEq(t, `{}`, string(decoded.Body))
}

func TestDecodeLiteralFrame(t *testing.T) {
	r := io.MultiReader(bytes.NewReader([]byte("0000000d")), bytes.NewReader([]byte(`["Hello", {}]`)))
	decoded, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, "Hello", decoded.Tag)
}

func TestDecodeSkipsZeroLengthFrame(t *testing.T) {
	r := io.MultiReader(
		bytes.NewReader([]byte("00000000")),
		bytes.NewReader([]byte("0000000d")),
		bytes.NewReader([]byte(`["Hello", {}]`)),
	)
	decoded, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, "Hello", decoded.Tag)
}

func TestDecodeProtocolError(t *testing.T) {
	r := bytes.NewReader([]byte("invalid!more"))
	_, err := Decode(r)
	require.Error(t, err)
	var protoErr *ftlerr.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, []byte("invalid!"), protoErr.Prefix)
	require.Equal(t, []byte("more"), protoErr.Trailing)
}

func TestDecodeEmptyStreamReturnsEOF(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}
