package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-lite/internal/request"
)

var ErrInvalidConfig = errors.New("invalid config")

// Environment variables read by Load.
const (
	EnvPort     = "HERMES_PORT"
	EnvDocRoot  = "HERMES_DOCROOT"
	EnvIdentity = "HERMES_IDENTITY"
	EnvMaxLine  = "HERMES_MAX_LINE"
	EnvLogLevel = "HERMES_LOG_LEVEL"
)

type Config struct {
	Port         int
	DocRoot      string
	Identity     string
	MaxLineBytes int
	LogLevel     string
}

func Default() Config {
	return Config{
		Port:         42069,
		DocRoot:      ".",
		Identity:     "SERVER_IDENTIFICATION",
		MaxLineBytes: request.DefaultMaxLineBytes,
		LogLevel:     "info",
	}
}

// Load starts from Default, applies the environment and then args.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if getenv != nil {
		if err := cfg.applyEnv(getenv); err != nil {
			return Config{}, err
		}
	}

	fs := flag.NewFlagSet("httpserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.DocRoot, "root", cfg.DocRoot, "document root")
	fs.StringVar(&cfg.Identity, "identity", cfg.Identity, "server identification string")
	fs.IntVar(&cfg.MaxLineBytes, "max-line", cfg.MaxLineBytes, "longest accepted request line in bytes")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvPort, v)
		}
		c.Port = port
	}
	if v := getenv(EnvDocRoot); v != "" {
		c.DocRoot = v
	}
	if v := getenv(EnvIdentity); v != "" {
		c.Identity = v
	}
	if v := getenv(EnvMaxLine); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvMaxLine, v)
		}
		c.MaxLineBytes = n
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.DocRoot == "" {
		return fmt.Errorf("%w: empty document root", ErrInvalidConfig)
	}
	if c.Identity == "" {
		return fmt.Errorf("%w: empty identity", ErrInvalidConfig)
	}
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("%w: max line %d", ErrInvalidConfig, c.MaxLineBytes)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level is LogLevel as a zerolog level.
func (c Config) Level() (zerolog.Level, error) {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return zerolog.NoLevel, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return zerolog.ParseLevel(c.LogLevel)
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
