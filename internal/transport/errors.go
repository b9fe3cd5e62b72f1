package transport

import (
	"errors"
	"strconv"
)

// ErrIncomplete is returned by Parse when the buffer holds a well formed
// prefix of a request but not all of it yet.
var ErrIncomplete = errors.New("http: incomplete request")

type ParseErrorKind uint8

const (
	MalformedRequestLine ParseErrorKind = iota + 1
	MalformedHeader
	InvalidContentLength
	MessageTooLarge
	MalformedChunkedBody
)

func (k ParseErrorKind) String() string {
	switch k {
	case MalformedRequestLine:
		return "malformed request line"
	case MalformedHeader:
		return "malformed header"
	case InvalidContentLength:
		return "invalid content-length"
	case MessageTooLarge:
		return "message too large"
	case MalformedChunkedBody:
		return "malformed chunked body"
	}
	return "parse error " + strconv.Itoa(int(k))
}

// ParseError means the buffered bytes can never become a valid request.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return "http: " + e.Kind.String()
	}
	return "http: " + e.Kind.String() + ": " + e.Detail
}

// Is matches any *ParseError of the same kind, so
// errors.Is(err, ErrMalformedHeader) works regardless of Detail.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMalformedRequestLine = &ParseError{Kind: MalformedRequestLine}
	ErrMalformedHeader      = &ParseError{Kind: MalformedHeader}
	ErrInvalidContentLength = &ParseError{Kind: InvalidContentLength}
	ErrMessageTooLarge      = &ParseError{Kind: MessageTooLarge}
	ErrMalformedChunkedBody = &ParseError{Kind: MalformedChunkedBody}
)

func parseErr(kind ParseErrorKind, detail string) *ParseError {
	return &ParseError{Kind: kind, Detail: detail}
}

type SerializeErrorKind uint8

const (
	ContentLengthMismatch SerializeErrorKind = iota + 1
	InvalidStatus
)

// SerializeError is a defect in whoever built the response. Nothing has been
// written when it is returned.
type SerializeError struct {
	Kind     SerializeErrorKind
	Declared string // Content-Length as declared, "" when absent
	Actual   int    // body length, or the status code for InvalidStatus
}

func (e *SerializeError) Error() string {
	switch e.Kind {
	case ContentLengthMismatch:
		if e.Declared == "" {
			return "http: response has a " + strconv.Itoa(e.Actual) + " byte body but no Content-Length"
		}
		return "http: response Content-Length " + strconv.Quote(e.Declared) +
			" does not match body length " + strconv.Itoa(e.Actual)
	case InvalidStatus:
		return "http: invalid response status code " + strconv.Itoa(e.Actual)
	}
	return "http: serialize error"
}

func (e *SerializeError) Is(target error) bool {
	t, ok := target.(*SerializeError)
	return ok && t.Kind == e.Kind
}

var (
	ErrContentLengthMismatch = &SerializeError{Kind: ContentLengthMismatch}
	ErrInvalidStatus         = &SerializeError{Kind: InvalidStatus}
)
