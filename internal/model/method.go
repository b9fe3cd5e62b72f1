package model

// Method is the request method as a closed set of known tokens plus
// MethodOther. An unrecognized method is not a parse error, routing decides
// what to do with it.
type Method uint8

const (
	MethodOther Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch
)

var methodTokens = [...]string{
	MethodOther:   "",
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodOptions: "OPTIONS",
	MethodTrace:   "TRACE",
	MethodPatch:   "PATCH",
}

// ParseMethod maps a request line token to a Method. Methods are case
// sensitive (RFC 9110 section 9.1), "get" is MethodOther.
func ParseMethod(token string) Method {
	switch token {
	case "GET":
		return MethodGet
	case "HEAD":
		return MethodHead
	case "POST":
		return MethodPost
	case "PUT":
		return MethodPut
	case "DELETE":
		return MethodDelete
	case "CONNECT":
		return MethodConnect
	case "OPTIONS":
		return MethodOptions
	case "TRACE":
		return MethodTrace
	case "PATCH":
		return MethodPatch
	}
	return MethodOther
}

// String returns the canonical token, or "OTHER" for MethodOther.
func (m Method) String() string {
	if int(m) < len(methodTokens) && m != MethodOther {
		return methodTokens[m]
	}
	return "OTHER"
}
