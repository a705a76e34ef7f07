// request.go

package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Custom errors
var (
	ErrMalformedRequest = errors.New("malformed request")
)

// RootPath is the resource path of a request for "/".
const RootPath = "./"

// DefaultMaxLineBytes bounds a single request line when no limit is given.
const DefaultMaxLineBytes = 8192

const getPrefix = "GET "

const (
	stateRequestLine = iota // 0
	stateHeaders            // 1
	stateDone               // 2
)

// Request is what is left of an HTTP request once its request line has been
// read: the path of the resource, relative to the document root. An empty
// ResourcePath means no GET line was seen.
type Request struct {
	ResourcePath string
	state        int
}

// IsRoot reports whether the request asks for the default page.
func (r *Request) IsRoot() bool {
	return r.ResourcePath == "" || r.ResourcePath == RootPath
}

func RequestFromReader(reader io.Reader) (*Request, error) {
	return ReadRequest(reader, DefaultMaxLineBytes)
}

// ReadRequest reads lines until the blank line that ends the header block.
// The first GET line names the resource, every other line is discarded.
// No line may be longer than maxLine bytes.
func ReadRequest(reader io.Reader, maxLine int) (*Request, error) {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	// room for the line feed and one carriage return
	br := bufio.NewReaderSize(reader, maxLine+2)

	req := &Request{state: stateRequestLine}

	for req.state != stateDone {
		line, err := readLine(br, maxLine)
		if err != nil {
			return nil, err
		}

		if line == "" {
			req.state = stateDone
			break
		}

		if req.state == stateRequestLine {
			path, ok, pErr := ParseRequestLine(line)
			if pErr != nil {
				return nil, pErr
			}
			if ok {
				req.ResourcePath = path
				req.state = stateHeaders
			}
		}
	}

	return req, nil
}

// readLine blocks until a full line is buffered. Trailing carriage returns are
// dropped, and what is left may be at most maxLine bytes.
func readLine(br *bufio.Reader, maxLine int) (string, error) {
	raw, err := br.ReadSlice('\n')
	switch {
	case err == nil:
	case errors.Is(err, bufio.ErrBufferFull):
		return "", fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedRequest, maxLine)
	case errors.Is(err, io.EOF):
		// stream closed before the blank line that ends the header block
		return "", fmt.Errorf("%w: %w", ErrMalformedRequest, io.ErrUnexpectedEOF)
	default:
		return "", fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	line := strings.TrimSuffix(string(raw), "\n")
	line = strings.TrimRight(line, "\r")
	if len(line) > maxLine {
		return "", fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedRequest, maxLine)
	}
	return line, nil
}

// ParseRequestLine extracts the resource path from a "GET <path> HTTP/x" line
// and prefixes it with "." so it is relative to the document root. ok is false
// for lines that are not GET lines.
func ParseRequestLine(line string) (path string, ok bool, err error) {
	if !strings.HasPrefix(line, "GET") {
		return "", false, nil
	}
	if len(line) < len(getPrefix) {
		return "", false, fmt.Errorf("%w: truncated request line %q", ErrMalformedRequest, line)
	}
	if line[:len(getPrefix)] != getPrefix {
		return "", false, nil
	}

	rest := line[len(getPrefix):]
	end := strings.IndexAny(rest, " \t")
	// panic guard
	if end == -1 {
		return "", false, fmt.Errorf("%w: no version after path in %q", ErrMalformedRequest, line)
	}
	if end == 0 {
		return "", false, fmt.Errorf("%w: empty path in %q", ErrMalformedRequest, line)
	}

	return "." + rest[:end], true, nil
}
