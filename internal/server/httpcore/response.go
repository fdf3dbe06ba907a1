package httpcore

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/bytebufferpool"

	"github.com/yndnr/wirehttp/internal/core/domain"
	"github.com/yndnr/wirehttp/internal/telemetry/logger"
)

// dateFormat is the IMF-fixdate layout used for the Date header.
const dateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// DefaultViewsDir is where Render looks for files unless configured otherwise.
const DefaultViewsDir = "./views"

const internalErrorBody = "Internal server exception"

// writeHalf is the write side of one connection. The server hands it to
// exactly one Response and closes it when the handler returns.
type writeHalf struct {
	mu     sync.Mutex
	bw     *bufio.Writer
	closer io.Closer
	closed bool
}

func newWriteHalf(w io.Writer, closer io.Closer) *writeHalf {
	return &writeHalf{bw: bufio.NewWriter(w), closer: closer}
}

func (w *writeHalf) writeFlush(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, net.ErrClosed
	}
	n, err := w.bw.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.bw.Flush()
}

func (w *writeHalf) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Response builds and writes the reply to one request.
type Response struct {
	mu      sync.Mutex
	status  domain.StatusCode
	content []byte
	headers Header

	views  string
	strict bool
	sent   bool
	out    *writeHalf

	logger logger.Logger
	now    func() time.Time
	onSent func(status, n int)
}

// NewResponse creates a strict Response writing to w, with status OK and
// DefaultViewsDir as its views root.
func NewResponse(w io.Writer) *Response {
	return newResponse(newWriteHalf(w, nil))
}

func newResponse(out *writeHalf) *Response {
	return &Response{
		status:  domain.StatusOK,
		headers: make(Header),
		views:   DefaultViewsDir,
		strict:  true,
		out:     out,
		logger:  logger.Default(),
		now:     time.Now,
	}
}

// SetStatus sets the status sent with the response.
func (r *Response) SetStatus(status domain.StatusCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

// Status returns the current status.
func (r *Response) Status() domain.StatusCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Header returns the response headers for modification before sending.
func (r *Response) Header() Header {
	return r.headers
}

// Content returns the body as last set by a send.
func (r *Response) Content() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

// Sent reports whether a send has been attempted.
func (r *Response) Sent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

// Raw serializes the response to its wire form.
//
// Connection, Content-Length and Date are always overwritten.
// Content-Type defaults to text/plain when unset. Headers are written in
// ascending name order.
func (r *Response) Raw() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rawLocked()
}

func (r *Response) rawLocked() []byte {
	r.headers.Set("Connection", "keep-alive")
	r.headers.Set("Content-Length", strconv.Itoa(len(r.content)))
	r.headers.Set("Date", r.now().UTC().Format(dateFormat))
	if !r.headers.Has("Content-Type") {
		r.headers.Set("Content-Type", domain.MimeTextPlain.String())
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(r.status.Code()))
	buf.WriteString(" ")
	buf.WriteString(r.status.Reason())
	buf.WriteString("\r\n")
	for _, name := range r.headers.Keys() {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(r.headers[name])
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(r.content)

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out
}

// Send sets content as the body, then writes and flushes the response.
func (r *Response) Send(content string) error {
	return r.SendBytes([]byte(content))
}

// SendBytes is Send for a byte slice.
//
// A strict Response sends at most once; later calls return
// domain.ErrAlreadySent and write nothing. Write failures are wrapped in
// domain.ErrWriteFailed and are not retried.
func (r *Response) SendBytes(content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.strict && r.sent {
		return domain.ErrAlreadySent
	}
	if r.out == nil {
		return domain.ErrWriteFailed.WithDetails("no write capability")
	}
	r.sent = true
	r.content = content

	raw := r.rawLocked()
	n, err := r.out.writeFlush(raw)
	if r.onSent != nil {
		r.onSent(r.status.Code(), n)
	}
	if err != nil {
		return domain.ErrWriteFailed.WithCause(err)
	}
	return nil
}

// JSON encodes v and sends it with Content-Type application/json.
// If encoding fails a 500 is sent instead and the encoding error returned.
func (r *Response) JSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		r.SetStatus(domain.StatusServerError)
		if sendErr := r.Send(internalErrorBody); sendErr != nil {
			return sendErr
		}
		return err
	}
	r.headers.Set("Content-Type", domain.MimeApplicationJSON.String())
	return r.SendBytes(data)
}
