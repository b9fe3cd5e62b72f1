package chunked

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrIncomplete = errors.New("chunked: incomplete body")
	ErrMalformed  = errors.New("malformed chunked encoding")
	ErrTooLarge   = errors.New("chunked: body too large")
)

const (
	// maxLineLength bounds chunk size lines and trailer lines.
	maxLineLength = 4096
	// maxTrailerBytes bounds the whole trailer section.
	maxTrailerBytes = 8 << 10
	// maxExcess bounds framing bytes not paid for by chunk data, see Decoder.
	maxExcess = 16 << 10
)

type decodeState uint8

const (
	stateSize decodeState = iota
	stateData
	stateTrailer
	stateDone
)

// Decoder decodes a chunked body that arrives in pieces. Each call gets the
// same buffer, grown by whatever was read since, and picks up where the last
// one stopped, so a body costs time linear in its wire size no matter how it
// is fragmented. Bytes already decoded must not change between calls.
//
// A Decoder is good for one body and is not safe for concurrent use.
type Decoder struct {
	Max int64 // decoded body limit, 0 means none

	state   decodeState
	off     int // first byte of buf not decoded yet
	size    uint64
	body    []byte
	excess  int64 // framing bytes, minus 16 per data byte
	trailer int
}

// Decode is Decoder.Decode on a fresh Decoder: buf must hold the body from
// its first byte.
func Decode(buf []byte, max int64) (body []byte, n int, err error) {
	return (&Decoder{Max: max}).Decode(buf)
}

// Decode returns the body and the number of bytes the encoding occupied,
// trailers included, once buf holds all of it. Trailer fields are validated
// for shape and discarded. ErrIncomplete means buf must be extended and
// passed in again.
func (d *Decoder) Decode(buf []byte) (body []byte, n int, err error) {
	if d.body == nil {
		d.body = []byte{}
	}
	for {
		switch d.state {
		case stateSize:
			line, next, err := readLine(buf, d.off)
			if err != nil {
				return nil, 0, err
			}
			size, err := parseChunkSize(line)
			if err != nil {
				return nil, 0, err
			}
			d.excess += int64(next - d.off)
			d.off = next
			if size == 0 {
				d.state = stateTrailer
				continue
			}
			if d.Max > 0 && uint64(len(d.body))+size > uint64(d.Max) {
				return nil, 0, ErrTooLarge
			}
			d.size, d.state = size, stateData

		case stateData:
			if uint64(len(buf)-d.off) < d.size+2 {
				return nil, 0, ErrIncomplete
			}
			end := d.off + int(d.size)
			if buf[end] != '\r' || buf[end+1] != '\n' {
				return nil, 0, fmt.Errorf("%w: chunk data not followed by CRLF", ErrMalformed)
			}
			d.body = append(d.body, buf[d.off:end]...)
			d.off = end + 2
			d.excess += 2 - 16*int64(d.size)
			if d.excess < 0 {
				d.excess = 0
			}
			d.state = stateSize

		case stateTrailer:
			line, next, err := readLine(buf, d.off)
			if err != nil {
				return nil, 0, err
			}
			d.trailer += next - d.off
			if d.trailer > maxTrailerBytes {
				return nil, 0, ErrTooLarge
			}
			d.off = next
			if len(line) == 0 {
				d.state = stateDone
				continue
			}
			if bytes.IndexByte(line, ':') <= 0 {
				return nil, 0, fmt.Errorf("%w: trailer without colon", ErrMalformed)
			}

		case stateDone:
			return d.body, d.off, nil
		}

		// tiny chunks with long size lines or extensions
		if d.excess > maxExcess {
			return nil, 0, fmt.Errorf("%w: too much framing for the data carried", ErrMalformed)
		}
	}
}

func readLine(buf []byte, off int) ([]byte, int, error) {
	i := bytes.IndexByte(buf[off:], '\n')
	if i < 0 {
		if len(buf)-off > maxLineLength {
			return nil, 0, ErrMalformed
		}
		return nil, 0, ErrIncomplete
	}
	if i == 0 || buf[off+i-1] != '\r' || i > maxLineLength {
		return nil, 0, ErrMalformed
	}
	return buf[off : off+i-1], off + i + 1, nil
}

// parseChunkSize reads the hex size, ignoring chunk extensions after ';'.
func parseChunkSize(line []byte) (size uint64, err error) {
	if i := bytes.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = bytes.TrimRight(line, " \t")
	if len(line) == 0 {
		return 0, ErrMalformed
	}
	if len(line) >= 16 {
		return 0, fmt.Errorf("%w: chunk length too large", ErrMalformed)
	}
	for _, b := range line {
		switch {
		case '0' <= b && b <= '9':
			b = b - '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, fmt.Errorf("%w: invalid byte %q in chunk length", ErrMalformed, b)
		}
		size <<= 4
		size |= uint64(b)
	}
	return size, nil
}
