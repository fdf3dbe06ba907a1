package httpcore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yndnr/wirehttp/internal/core/domain"
)

// Header maps header names to values. Names keep the case they were
// received or set with; lookups are exact.
type Header map[string]string

// Get returns the value for key, or "".
func (h Header) Get(key string) string {
	return h[key]
}

// Set stores value under key, replacing any previous value.
func (h Header) Set(key, value string) {
	h[key] = value
}

// Del removes key.
func (h Header) Del(key string) {
	delete(h, key)
}

// Has reports whether key is present.
func (h Header) Has(key string) bool {
	_, ok := h[key]
	return ok
}

// Keys returns the header names in ascending order.
func (h Header) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MethodPolicy decides what happens to a request-line method token that
// is not a supported method.
type MethodPolicy uint8

const (
	// MethodPolicyReject fails the parse with domain.ErrUnknownMethod.
	MethodPolicyReject MethodPolicy = iota
	// MethodPolicyFallbackGET treats the request as a GET.
	MethodPolicyFallbackGET
)

// ParseMethodPolicy decodes a configuration value ("reject" or "get").
func ParseMethodPolicy(s string) (MethodPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return MethodPolicyReject, nil
	case "get":
		return MethodPolicyFallbackGET, nil
	}
	return 0, fmt.Errorf("unknown method policy %q", s)
}

func (p MethodPolicy) String() string {
	if p == MethodPolicyFallbackGET {
		return "get"
	}
	return "reject"
}

// ParseOptions controls ReadRequest. The zero value rejects unknown
// methods and applies no size limits.
type ParseOptions struct {
	UnknownMethod MethodPolicy
	// MaxLineBytes limits any single line of the head, terminator included.
	MaxLineBytes int
	// MaxHeaderBytes limits the request line plus all header lines.
	MaxHeaderBytes int
}

// Request is a parsed request head. It is not modified after ReadRequest
// returns, apart from the server filling RemoteAddr and ID before dispatch.
type Request struct {
	Method  domain.Method
	Path    string
	Headers Header
	// Size is the byte count of the request line and header lines,
	// excluding the blank line that ends the head.
	Size int

	RemoteAddr string
	ID         string
}

// ReadRequest reads one request head from br. No body is read.
//
// A stream that ends before any byte is read yields
// domain.ErrEmptyRequest. The head ends at an empty line, a bare line
// terminator, or the end of the stream. Header lines without ": " are
// skipped.
func ReadRequest(br *bufio.Reader, opts ParseOptions) (*Request, error) {
	line, err := readLine(br, opts.MaxLineBytes)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrEmptyRequest
		}
		return nil, err
	}
	size := len(line)
	if err := checkHeadSize(size, opts.MaxHeaderBytes); err != nil {
		return nil, err
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, domain.ErrMalformedRequestLine.WithDetails(strings.TrimSpace(line))
	}

	method, err := domain.ParseMethod(fields[0])
	if err != nil {
		if opts.UnknownMethod != MethodPolicyFallbackGET {
			return nil, err
		}
		method = domain.MethodGet
	}

	path := fields[1]
	if !strings.HasPrefix(path, "/") {
		return nil, domain.ErrMalformedRequestLine.WithDetails("path must start with /: " + path)
	}

	req := &Request{
		Method:  method,
		Path:    path,
		Headers: make(Header),
	}

	for {
		line, err := readLine(br, opts.MaxLineBytes)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}

		size += len(line)
		if err := checkHeadSize(size, opts.MaxHeaderBytes); err != nil {
			return nil, err
		}

		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	req.Size = size
	return req, nil
}

func checkHeadSize(size, limit int) error {
	if limit > 0 && size > limit {
		return domain.ErrHeaderTooLarge.WithDetails(fmt.Sprintf("head exceeds %d bytes", limit))
	}
	return nil
}

// readLine returns the next line including its terminator. A final line
// without a terminator is returned as is; io.EOF is returned only when no
// byte was read.
func readLine(br *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := br.ReadSlice('\n')
		buf = append(buf, frag...)
		if maxLen > 0 && len(buf) > maxLen {
			return "", domain.ErrHeaderTooLarge.WithDetails(fmt.Sprintf("line exceeds %d bytes", maxLen))
		}
		if err == nil {
			return string(buf), nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if len(buf) == 0 {
				return "", io.EOF
			}
			return string(buf), nil
		}
		return "", domain.ErrReadFailed.WithCause(err)
	}
}
