package model

import "strings"

// Field is a single header line as it appeared on the wire.
type Field struct {
	Name  string
	Value string
}

// Header keeps fields in insertion order. Duplicate names are kept, name
// lookups fold ASCII case while the stored casing is left untouched.
//
// unlike [net/http.Header] nothing gets canonicalized, what goes in is
// exactly what the serializer writes out.
type Header struct {
	fields []Field
}

func NewHeader(fields ...Field) Header {
	h := Header{}
	for _, f := range fields {
		h.Add(f.Name, f.Value)
	}
	return h
}

func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{name, value})
}

// Set replaces the value of the first field matching name, keeping its
// position, and drops any later duplicates. The field is appended if absent.
func (h *Header) Set(name, value string) {
	idx := -1
	out := h.fields[:0]
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			if idx != -1 {
				continue
			}
			idx = len(out)
			f.Value = value
		}
		out = append(out, f)
	}
	h.fields = out
	if idx == -1 {
		h.fields = append(h.fields, Field{name, value})
	}
}

func (h *Header) Del(name string) {
	out := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Get returns the first value stored under name.
func (h Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

func (h Header) Lookup(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

func (h Header) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Values returns every value stored under name in wire order.
func (h Header) Values(name string) []string {
	var vv []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			vv = append(vv, f.Value)
		}
	}
	return vv
}

func (h Header) Len() int { return len(h.fields) }

// Fields returns a copy of the stored fields.
func (h Header) Fields() []Field {
	if len(h.fields) == 0 {
		return nil
	}
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

func (h Header) Clone() Header {
	return Header{fields: h.Fields()}
}

// HasToken reports whether any comma separated element of the fields named
// name equals token, case-insensitively. Used for Connection: close and
// Transfer-Encoding: chunked checks.
func (h Header) HasToken(name, token string) bool {
	for _, v := range h.Values(name) {
		for _, elem := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(elem), token) {
				return true
			}
		}
	}
	return false
}
