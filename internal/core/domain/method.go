package domain

// Method is an HTTP request method supported by the server.
type Method uint8

// Supported methods. The zero value is not a valid method.
const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPatch
	MethodDelete
)

var methodNames = map[Method]string{
	MethodGet:    "GET",
	MethodPost:   "POST",
	MethodPatch:  "PATCH",
	MethodDelete: "DELETE",
}

// Methods returns every supported method in declaration order.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPatch, MethodDelete}
}

// ParseMethod decodes a request-line method token.
//
// Matching is exact and case-sensitive. Any other token yields
// ErrUnknownMethod; picking a fallback is left to the caller.
func ParseMethod(token string) (Method, error) {
	switch token {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	case "PATCH":
		return MethodPatch, nil
	case "DELETE":
		return MethodDelete, nil
	}
	return 0, ErrUnknownMethod.WithDetails(token)
}

// String returns the wire token for the method.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}
