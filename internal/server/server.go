package server

import (
	"errors"
	"net"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-lite/internal/config"
	"github.com/devwelkin/hermes-lite/internal/render"
	"github.com/devwelkin/hermes-lite/internal/resolve"
)

// Server holds the state for our http server
type Server struct {
	listener net.Listener
	opts     WorkerOptions
	log      zerolog.Logger
	closed   atomic.Bool
	nextID   atomic.Uint64
}

// Serve listens on cfg's port and answers each connection in its own
// goroutine.
func Serve(cfg config.Config, log zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, err
	}
	return ServeListener(listener, cfg, log), nil
}

// ServeListener is Serve on an existing listener.
func ServeListener(listener net.Listener, cfg config.Config, log zerolog.Logger) *Server {
	s := &Server{
		listener: listener,
		opts: WorkerOptions{
			Resolver:     resolve.New(cfg.DocRoot),
			Renderer:     render.New(cfg.Identity, nil),
			Identity:     cfg.Identity,
			MaxLineBytes: cfg.MaxLineBytes,
		},
		log: log,
	}

	go s.listen()

	return s
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting connections. Connections already accepted run to
// completion.
func (s *Server) Close() error {
	s.closed.Store(true)
	return s.listener.Close()
}

// listen is the main accept loop
func (s *Server) listen() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				s.log.Info().Msg("listener closed, server shutting down")
				return
			}
			s.log.Error().Err(err).Msg("error accepting connection")
			continue
		}

		log := s.log.With().
			Uint64("conn", s.nextID.Add(1)).
			Str("remote", conn.RemoteAddr().String()).
			Logger()
		worker := NewWorker(s.opts, log)
		go worker.Handle(conn)
	}
}
