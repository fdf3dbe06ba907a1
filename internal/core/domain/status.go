package domain

import "strconv"

// StatusCode is a response status the server can emit.
type StatusCode uint8

// Supported status codes. The zero value is not a valid status.
const (
	StatusOK StatusCode = iota + 1
	StatusBadRequest
	StatusNotFound
	StatusServerError
)

type statusEntry struct {
	code   int
	reason string
}

// statusTable is the only source of numeric codes and reason phrases.
var statusTable = map[StatusCode]statusEntry{
	StatusOK:          {200, "OK"},
	StatusBadRequest:  {400, "Bad Request"},
	StatusNotFound:    {404, "Not Found"},
	StatusServerError: {500, "Server Error"},
}

// Code returns the numeric status code, or 0 for an invalid status.
func (s StatusCode) Code() int {
	return statusTable[s].code
}

// Reason returns the reason phrase, or "" for an invalid status.
func (s StatusCode) Reason() string {
	return statusTable[s].reason
}

// Valid reports whether s is one of the supported statuses.
func (s StatusCode) Valid() bool {
	_, ok := statusTable[s]
	return ok
}

// String returns "<code> <reason>", e.g. "404 Not Found".
func (s StatusCode) String() string {
	e, ok := statusTable[s]
	if !ok {
		return "invalid status"
	}
	return strconv.Itoa(e.code) + " " + e.reason
}

// MimeType is a content type the server sets on its own.
type MimeType string

// Known content types.
const (
	MimeTextPlain       MimeType = "text/plain"
	MimeTextHTML        MimeType = "text/html"
	MimeApplicationJSON MimeType = "application/json"
	MimeImageJPEG       MimeType = "image/jpeg"
	MimeImagePNG        MimeType = "image/png"
)

// String returns the header value.
func (m MimeType) String() string {
	return string(m)
}
