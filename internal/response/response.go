package response

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/devwelkin/hermes-lite/internal/headers"
)

var (
	// ErrStreamIO wraps every failed write to the client stream.
	ErrStreamIO = errors.New("stream write failed")
	// ErrWrongState is returned when parts of a response are written out of
	// order.
	ErrWrongState = errors.New("response written out of order")
)

type StatusCode int

const (
	StatusOK       StatusCode = 200
	StatusNotFound StatusCode = 404
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:       "OK",
	StatusNotFound: "FileNotFound",
}

// DateLayout is the layout of the Date header, always in GMT.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// ContentTypeHTML is used for the canned pages and for files whose type is
// unknown.
const ContentTypeHTML = "text/html"

type writerState int

const (
	stateStatus  writerState = iota // can write status
	stateHeaders                    // can write headers
	stateBody                       // can write body
)

// Writer is a stateful writer for constructing an http response.
type Writer struct {
	w        io.Writer   // connection
	state    writerState // state machine
	identity string
	now      func() time.Time
}

// NewWriter creates a new response Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:     w,
		state: stateStatus,
		now:   time.Now,
	}
}

// WithIdentity sets the Server header value used by WriteHeader.
func (w *Writer) WithIdentity(identity string) *Writer {
	w.identity = identity
	return w
}

// WithClock sets the clock used for the Date header.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// StatusLine returns the status line for code, without its line feed.
func StatusLine(code StatusCode) string {
	reason, ok := reasonPhrases[code]
	if !ok {
		return fmt.Sprintf("HTTP/1.1 %d", code)
	}
	return fmt.Sprintf("HTTP/1.1 %d %s", code, reason)
}

// WriteStatusLine writes the status line. can only be called once, and first.
func (w *Writer) WriteStatusLine(statusCode StatusCode) error {
	if w.state != stateStatus {
		return fmt.Errorf("%w: WriteStatusLine called in wrong state", ErrWrongState)
	}

	if _, err := io.WriteString(w.w, StatusLine(statusCode)+"\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	w.state = stateHeaders
	return nil
}

// WriteHeaders writes the headers and the blank line that ends them. must be
// called after status and before body.
func (w *Writer) WriteHeaders(h headers.Headers) error {
	if w.state != stateHeaders {
		return fmt.Errorf("%w: WriteHeaders called in wrong state", ErrWrongState)
	}

	if _, err := h.WriteTo(w.w); err != nil {
		if errors.Is(err, headers.ErrInvalidField) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}

	w.state = stateBody
	return nil
}

// WriteHeader writes the status line and the fixed header set.
func (w *Writer) WriteHeader(status StatusCode, contentType string) error {
	if err := w.WriteStatusLine(status); err != nil {
		return err
	}
	return w.WriteHeaders(DefaultHeaders(w.identity, contentType, w.now()))
}

// WriteBody writes to the response body verbatim. can be called multiple
// times, but only after headers have been written.
func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != stateBody {
		return 0, fmt.Errorf("%w: WriteBody called before headers", ErrWrongState)
	}
	n, err := w.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	return n, nil
}

// Write makes a Writer usable as the body destination of a renderer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.WriteBody(p)
}

// DefaultHeaders builds the header set sent with every response. The body is
// framed by closing the connection, so there is no Content-Length.
func DefaultHeaders(identity, contentType string, now time.Time) headers.Headers {
	if contentType == "" {
		contentType = ContentTypeHTML
	}
	h := headers.NewHeaders()
	h.Set("Date", now.UTC().Format(DateLayout))
	h.Set("Server", identity)
	h.Set("Connection", "close")
	h.Set("Content-Type", contentType)
	return h
}
