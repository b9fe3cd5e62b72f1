package chunked_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpd/internal/transport/chunked"
)

func TestDecode(t *testing.T) {
	cases := map[string]struct {
		data string
		body string
	}{
		"Single":     {"5\r\nhello\r\n0\r\n\r\n", "hello"},
		"Multiple":   {"3\r\nhel\r\n2\r\nlo\r\n0\r\n\r\n", "hello"},
		"UpperHex":   {"A\r\n0123456789\r\n0\r\n\r\n", "0123456789"},
		"Extensions": {"5;name=val\r\nhello\r\n0;x\r\n\r\n", "hello"},
		"Trailers":   {"2\r\nhi\r\n0\r\nExpires: never\r\nX: y\r\n\r\n", "hi"},
		"Empty":      {"0\r\n\r\n", ""},
	}
	for name, cas := range cases {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			body, n, err := chunked.Decode([]byte(tCase.data+"GET / HTTP/1.1\r\n"), 0)
			require.NoError(t, err)
			require.Equal(t, tCase.body, string(body))
			require.Equal(t, len(tCase.data), n)
		})
	}
}

func TestDecodeIncompleteEveryPrefix(t *testing.T) {
	data := "3\r\nhel\r\n2\r\nlo\r\n0\r\nX: y\r\n\r\n"
	for i := 0; i < len(data); i++ {
		_, _, err := chunked.Decode([]byte(data[:i]), 0)
		require.ErrorIs(t, err, chunked.ErrIncomplete, "prefix %q", data[:i])
	}
	body, n, err := chunked.Decode([]byte(data), 0)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
	require.Equal(t, len(data), n)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"BadHex":          "zz\r\nhello\r\n0\r\n\r\n",
		"MissingChunkEnd": "5\r\nhelloXX0\r\n\r\n",
		"BareLF":          "5\nhello\r\n0\r\n\r\n",
		"TooLong":         "10000000000000000\r\n",
		"EmptySize":       "\r\n",
		"BadTrailer":      "0\r\nnocolon\r\n\r\n",
	}
	for name, data := range cases {
		data := data
		t.Run(name, func(t *testing.T) {
			_, _, err := chunked.Decode([]byte(data), 0)
			require.True(t, errors.Is(err, chunked.ErrMalformed), "got %v", err)
		})
	}
}

func TestDecodeTooLarge(t *testing.T) {
	_, _, err := chunked.Decode([]byte("3\r\nabc\r\n3\r\ndef\r\n0\r\n\r\n"), 5)
	require.ErrorIs(t, err, chunked.ErrTooLarge)
}

func TestDecoderResumes(t *testing.T) {
	data := "3\r\nhel\r\n2\r\nlo\r\n0\r\nX: y\r\n\r\n"
	d := &chunked.Decoder{}
	for i := 0; i < len(data); i++ {
		_, _, err := d.Decode([]byte(data[:i]))
		require.ErrorIs(t, err, chunked.ErrIncomplete, "prefix %q", data[:i])
	}
	body, n, err := d.Decode([]byte(data))
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
	require.Equal(t, len(data), n)
}

func TestDecoderDoesNotRevisitDecodedBytes(t *testing.T) {
	d := &chunked.Decoder{}
	first := "3\r\nhel\r\n"
	_, _, err := d.Decode([]byte(first))
	require.ErrorIs(t, err, chunked.ErrIncomplete)

	// what was decoded already is never looked at again
	buf := []byte(strings.Repeat("#", len(first)) + "2\r\nlo\r\n0\r\n\r\n")
	body, n, err := d.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
	require.Equal(t, len(buf), n)
}

func TestDecodeTooMuchFraming(t *testing.T) {
	chunk := "1;" + strings.Repeat("x", 4000) + "\r\na\r\n"
	_, _, err := chunked.Decode([]byte(strings.Repeat(chunk, 5)), 0)
	require.ErrorIs(t, err, chunked.ErrMalformed)

	// one byte chunks carry little framing each and are fine
	body, _, err := chunked.Decode([]byte(strings.Repeat("1\r\na\r\n", 10000)+"0\r\n\r\n"), 0)
	require.NoError(t, err)
	require.Len(t, body, 10000)
}

func TestDecodeTrailerTooLarge(t *testing.T) {
	trailer := "X-Pad: " + strings.Repeat("p", 100) + "\r\n"
	_, _, err := chunked.Decode([]byte("0\r\n"+strings.Repeat(trailer, 100)), 0)
	require.ErrorIs(t, err, chunked.ErrTooLarge)
}
