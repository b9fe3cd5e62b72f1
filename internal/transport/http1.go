package transport

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/frankli0324/go-httpd/internal/model"
)

// Serialize returns the exact bytes Write would put on the wire.
func Serialize(resp *model.Response) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes resp in full. Headers go out in stored order with their stored
// casing, nothing is added, dropped or merged. resp is validated before the
// first byte is written, so a *SerializeError never leaves a partial response
// behind.
func Write(w io.Writer, resp *model.Response) error {
	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := writeHeader(w, resp); err != nil {
		return err
	}
	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			return err
		}
	}
	return nil
}

func checkResponse(resp *model.Response) error {
	if resp.Status < 100 || resp.Status > 999 {
		return &SerializeError{Kind: InvalidStatus, Actual: resp.Status}
	}
	declared, ok := resp.Header.Lookup(model.HeaderContentLength)
	if !ok {
		if len(resp.Body) != 0 {
			return &SerializeError{Kind: ContentLengthMismatch, Actual: len(resp.Body)}
		}
		return nil
	}
	for _, v := range resp.Header.Values(model.HeaderContentLength) {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 63)
		if err != nil || n != uint64(len(resp.Body)) {
			return &SerializeError{Kind: ContentLengthMismatch, Declared: declared, Actual: len(resp.Body)}
		}
	}
	return nil
}

// writeHeader writes the status and header part of an http 1.1 response
// e.g.:
//
//	HTTP/1.1 200 OK\r\n
//	Content-Type: text/plain\r\n
//	Content-Length: 5\r\n
//	\r\n
func writeHeader(w io.Writer, resp *model.Response) error {
	header := bufio.NewWriter(w) // default bufsize is 4096

	proto, reason := resp.StatusLine()
	header.WriteString(proto)
	header.WriteByte(' ')
	header.WriteString(strconv.Itoa(resp.Status))
	header.WriteByte(' ')
	header.WriteString(reason)
	header.WriteString("\r\n")

	for _, f := range resp.Header.Fields() {
		header.WriteString(f.Name)
		header.WriteString(": ")
		header.WriteString(f.Value)
		if _, err := header.WriteString("\r\n"); err != nil {
			return err
		}
	}
	if _, err := header.WriteString("\r\n"); err != nil {
		return err
	}
	return header.Flush()
}
