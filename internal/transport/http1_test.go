package transport_test

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpd/internal/model"
	"github.com/frankli0324/go-httpd/internal/transport"
)

var respShouldBe = map[string]struct {
	resp *model.Response
	data string
}{
	"Empty": {
		resp: model.Empty(model.StatusOK),
		data: "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n",
	},
	"NoHeaders": {
		resp: model.NewResponse(model.StatusNotFound),
		data: "HTTP/1.1 404 Not Found\r\n\r\n",
	},
	"Echo": {
		resp: model.Text(model.StatusOK, "hello"),
		data: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello",
	},
	"HeaderOrderAndCasingKept": {
		resp: &model.Response{
			Status: model.StatusCreated,
			Header: model.NewHeader(
				model.Field{Name: "x-b", Value: "2"},
				model.Field{Name: "X-A", Value: "1"},
				model.Field{Name: "x-b", Value: "3"},
				model.Field{Name: "content-length", Value: "0"},
			),
		},
		data: "HTTP/1.1 201 Created\r\nx-b: 2\r\nX-A: 1\r\nx-b: 3\r\ncontent-length: 0\r\n\r\n",
	},
	"CustomReasonAndProto": {
		resp: &model.Response{Proto: "HTTP/1.0", Status: 299, Reason: "Fine"},
		data: "HTTP/1.0 299 Fine\r\n\r\n",
	},
	"UnknownStatusEmptyReason": {
		resp: &model.Response{Status: 799},
		data: "HTTP/1.1 799 \r\n\r\n",
	},
}

func TestResponseSerialize(t *testing.T) {
	for name, cas := range respShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			b, err := transport.Serialize(tCase.resp)
			require.NoError(t, err)
			if err := iotest.TestReader(bytes.NewReader(b), []byte(tCase.data)); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestResponseWriteLargeBody(t *testing.T) {
	body := bytes.Repeat([]byte("0123456789"), 1000)
	var buf bytes.Buffer
	require.NoError(t, transport.Write(&buf, model.NewResponse(200).WithBody(body)))
	require.True(t, bytes.HasSuffix(buf.Bytes(), append([]byte("Content-Length: 10000\r\n\r\n"), body...)))
}

func TestResponseContentLengthMismatch(t *testing.T) {
	cases := map[string]*model.Response{
		"Larger": {Status: 200, Body: []byte("hello"),
			Header: model.NewHeader(model.Field{Name: "Content-Length", Value: "6"})},
		"Smaller": {Status: 200, Body: []byte("hello"),
			Header: model.NewHeader(model.Field{Name: "Content-Length", Value: "4"})},
		"NotANumber": {Status: 200, Body: []byte("hello"),
			Header: model.NewHeader(model.Field{Name: "content-length", Value: "five"})},
		"MissingWithBody": {Status: 200, Body: []byte("hello")},
		"DeclaredWithoutBody": {Status: 200,
			Header: model.NewHeader(model.Field{Name: "Content-Length", Value: "3"})},
		"SecondDisagrees": {Status: 200, Body: []byte("hi"),
			Header: model.NewHeader(
				model.Field{Name: "Content-Length", Value: "2"},
				model.Field{Name: "Content-Length", Value: "3"},
			)},
	}
	for name, resp := range cases {
		resp := resp
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := transport.Write(&buf, resp)
			require.ErrorIs(t, err, transport.ErrContentLengthMismatch)
			require.Zero(t, buf.Len(), "nothing may be written on a serialize error")

			var serr *transport.SerializeError
			require.True(t, errors.As(err, &serr))
			require.Equal(t, len(resp.Body), serr.Actual)
		})
	}
}

func TestResponseInvalidStatus(t *testing.T) {
	_, err := transport.Serialize(&model.Response{Status: 42})
	require.ErrorIs(t, err, transport.ErrInvalidStatus)
}

func TestResponseWriteError(t *testing.T) {
	w := &failingWriter{}
	err := transport.Write(w, model.Text(200, "hello"))
	require.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

// A serialized response re-read as a request shaped message keeps every
// header field in its original order.
func TestResponseRoundTripHeaders(t *testing.T) {
	for name, cas := range respShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			b, err := transport.Serialize(tCase.resp)
			require.NoError(t, err)

			// swap the status line for a request line, the rest is framed identically
			eol := bytes.Index(b, []byte("\r\n"))
			msg := append([]byte("POST / HTTP/1.1"), b[eol:]...)

			req, n, err := transport.Parse(msg)
			require.NoError(t, err)
			require.Equal(t, len(msg), n)
			require.Equal(t, tCase.resp.Header.Fields(), req.Header().Fields())
			require.Equal(t, string(tCase.resp.Body), string(req.Body()))
		})
	}
}

func TestHTTP1Transport(t *testing.T) {
	tr := transport.HTTP1(transport.Limits{MaxBodyBytes: 1})
	_, _, err := tr.Parse([]byte("POST / HTTP/1.1\r\nContent-Length: 2\r\n\r\nhi"))
	require.ErrorIs(t, err, transport.ErrMessageTooLarge)

	var buf bytes.Buffer
	require.NoError(t, tr.Write(&buf, model.Empty(204)))
	require.Equal(t, "HTTP/1.1 204 No Content\r\nContent-Length: 0\r\n\r\n", buf.String())
}
