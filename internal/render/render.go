package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/devwelkin/hermes-lite/internal/resolve"
	"github.com/devwelkin/hermes-lite/internal/response"
)

// Placeholder tokens recognized in served files.
const (
	DateToken   = "{{cs371date}}"
	ServerToken = "{{cs371server}}"
)

// TimestampLayout is yyyy/MM/dd HH:mm:ss.
const TimestampLayout = "2006/01/02 15:04:05"

const (
	DefaultPage = "<html><head></head><body>\n" +
		"<h3>My web server works!!!</h3>\n" +
		"</body></html>\n"

	NotFoundPage = "<html><head></head><body>\n" +
		"<h3> 404 FILE NOT FOUND -\\('_')/-</h3>\n" +
		"</body></html>\n"
)

// contentTypes are the text types served by extension. Anything else is
// sent as text/html.
var contentTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".xml":  "text/xml",
	".svg":  "image/svg+xml",
}

var ErrContentRead = errors.New("reading content failed")

// Renderer produces response bodies.
type Renderer struct {
	identity string
	now      func() time.Time
}

// New returns a Renderer that substitutes identity for ServerToken and the
// local time from now for DateToken. A nil now means time.Now.
func New(identity string, now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{identity: identity, now: now}
}

// ContentType is the Content-Type that goes with the body of res.
func ContentType(res resolve.Result) string {
	if res.Kind != resolve.Found {
		return response.ContentTypeHTML
	}
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(res.Path))]; ok {
		return ct
	}
	return response.ContentTypeHTML
}

// Render writes the body for res to w. The file of a Found result is closed
// before Render returns.
func (r *Renderer) Render(w io.Writer, res resolve.Result) error {
	defer res.Close()

	switch res.Kind {
	case resolve.Default:
		return writeString(w, DefaultPage)
	case resolve.NotFound:
		return writeString(w, NotFoundPage)
	case resolve.Found:
		if res.File == nil {
			return fmt.Errorf("%w: no open file for %s", ErrContentRead, res.Path)
		}
		return r.renderFile(w, res.File)
	default:
		return fmt.Errorf("render: unknown result kind %v", res.Kind)
	}
}

// renderFile copies src line by line. Line endings are kept as they are.
func (r *Renderer) renderFile(w io.Writer, src io.Reader) error {
	br := bufio.NewReader(src)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if wErr := writeString(w, r.ReplaceLine(line)); wErr != nil {
				return wErr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrContentRead, err)
		}
	}
}

// ReplaceLine substitutes every placeholder token in line.
func (r *Renderer) ReplaceLine(line string) string {
	if !strings.Contains(line, "{{cs371") {
		return line
	}
	rep := strings.NewReplacer(
		DateToken, r.now().Local().Format(TimestampLayout),
		ServerToken, r.identity,
	)
	return rep.Replace(line)
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		if errors.Is(err, response.ErrStreamIO) {
			return err
		}
		return fmt.Errorf("%w: %w", response.ErrStreamIO, err)
	}
	return nil
}
