// package transport contains the server side of the HTTP/1.1 *message syntax*
// (RFC 9112): framing requests out of a byte stream and writing responses
// back onto it.
//
// the parser is resumable in the simplest way possible: it never keeps state
// between calls. callers hand it everything read so far and get back either
// a complete request plus the number of bytes it occupied, [ErrIncomplete],
// or a [*ParseError]. this keeps it indifferent to how bytes arrive, be it
// blocking reads, one byte at a time, or an event loop. the one exception is
// a chunked body, whose decode progress a [Session] keeps per connection.
//
// semantics (methods, status codes, header lookup) live in [model].

package transport
