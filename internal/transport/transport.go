package transport

import (
	"io"

	"github.com/frankli0324/go-httpd/internal/model"
)

// Transport frames requests off a connection's read buffer and writes
// responses onto the connection.
type Transport interface {
	Parse(buf []byte) (*model.Request, int, error)
	NewSession() *Session
	Write(w io.Writer, resp *model.Response) error
}

// HTTP1 returns the HTTP/1.1 transport enforcing limits.
func HTTP1(limits Limits) Transport {
	return &http1{Parser{Limits: limits}}
}

type http1 struct {
	Parser
}

func (t *http1) Write(w io.Writer, resp *model.Response) error {
	return Write(w, resp)
}
