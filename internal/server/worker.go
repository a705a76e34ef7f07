package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-lite/internal/render"
	"github.com/devwelkin/hermes-lite/internal/request"
	"github.com/devwelkin/hermes-lite/internal/resolve"
	"github.com/devwelkin/hermes-lite/internal/response"
)

// State is the progress of a Worker through its single request.
type State int

const (
	StateStart State = iota
	StateRequestRead
	StateResolved
	StateHeaderSent
	StateBodySent
	StateClosed
)

var stateNames = [...]string{
	StateStart:       "start",
	StateRequestRead: "request read",
	StateResolved:    "resolved",
	StateHeaderSent:  "header sent",
	StateBodySent:    "body sent",
	StateClosed:      "closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Resolver maps a request to the content that answers it.
type Resolver interface {
	Resolve(req *request.Request) resolve.Result
}

// Worker answers exactly one request on one stream. Workers are not reused
// and share nothing mutable with each other.
type Worker struct {
	resolver Resolver
	renderer *render.Renderer
	identity string
	maxLine  int
	now      func() time.Time
	log      zerolog.Logger
	state    State
}

// WorkerOptions are the immutable collaborators a Worker is built from.
type WorkerOptions struct {
	Resolver     Resolver
	Renderer     *render.Renderer
	Identity     string
	MaxLineBytes int
	Now          func() time.Time
}

func NewWorker(opts WorkerOptions, log zerolog.Logger) *Worker {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = resolve.New(".")
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.New(opts.Identity, now)
	}
	return &Worker{
		resolver: resolver,
		renderer: renderer,
		identity: opts.Identity,
		maxLine:  opts.MaxLineBytes,
		now:      now,
		log:      log,
		state:    StateStart,
	}
}

func (w *Worker) State() State {
	return w.state
}

// Handle reads one request from conn, writes the response and closes conn.
// conn is closed on every path, and the first error is returned.
func (w *Worker) Handle(conn io.ReadWriteCloser) (err error) {
	if w.state != StateStart {
		return fmt.Errorf("worker already used (state %v)", w.state)
	}
	w.log.Debug().Msg("handling connection")

	defer func() {
		closeErr := conn.Close()
		w.state = StateClosed
		if err == nil && closeErr != nil {
			err = fmt.Errorf("%w: close: %w", response.ErrStreamIO, closeErr)
		}
		w.logDone(err)
	}()

	// 1. parse the request
	req, err := request.ReadRequest(conn, w.maxLine)
	if err != nil {
		return err
	}
	w.state = StateRequestRead
	w.log.Debug().Str("path", req.ResourcePath).Msg("request line")

	// 2. resolve it
	res := w.resolver.Resolve(req)
	// Render owns the file once it is called
	rendering := false
	defer func() {
		if !rendering {
			res.Close()
		}
	}()
	w.state = StateResolved
	ev := w.log.Debug().Stringer("result", res.Kind).Str("path", res.Path)
	if res.Err != nil {
		ev = ev.AnErr("cause", res.Err)
	}
	ev.Msg("resolved")

	bw := bufio.NewWriter(conn)
	rw := response.NewWriter(bw).WithIdentity(w.identity).WithClock(w.now)

	// 3. write status line and headers
	if err := rw.WriteHeader(res.Status(), render.ContentType(res)); err != nil {
		return err
	}
	w.state = StateHeaderSent

	// 4. write body
	rendering = true
	if err := w.renderer.Render(rw, res); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %w", response.ErrStreamIO, err)
	}
	w.state = StateBodySent

	return nil
}

func (w *Worker) logDone(err error) {
	switch {
	case err == nil:
		w.log.Debug().Msg("done handling connection")
	case errors.Is(err, request.ErrMalformedRequest):
		w.log.Warn().Err(err).Msg("malformed request")
	case errors.Is(err, response.ErrStreamIO):
		w.log.Warn().Err(err).Msg("stream error")
	default:
		w.log.Error().Err(err).Msg("connection aborted")
	}
}
