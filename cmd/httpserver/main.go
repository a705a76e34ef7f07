package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-lite/internal/config"
	"github.com/devwelkin/hermes-lite/internal/server"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	level, _ := cfg.Level()
	log = log.Level(level)

	srv, err := server.Serve(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error starting server")
	}
	defer srv.Close()
	log.Info().
		Str("addr", srv.Addr().String()).
		Str("root", cfg.DocRoot).
		Msg("server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("server gracefully stopped")
}
