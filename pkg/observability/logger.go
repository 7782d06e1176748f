// Package observability provides structured logging, correlation ids and
// health checks for Arena processes.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/felixgeelhaar/arena/pkg/config"
)

// ServiceName is attached to every record as the "service" attribute.
const ServiceName = "arena"

// Options controls how NewLogger renders records.
type Options struct {
	Level     slog.Level
	JSON      bool
	AddSource bool
	// Env and Version are attached once to every record when set.
	Env     string
	Version string
}

// NewLogger returns a logger writing to w that stamps each record with the
// service attributes and the Trace found on the record's context.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	var base slog.Handler = slog.NewTextHandler(w, ho)
	if opts.JSON {
		base = slog.NewJSONHandler(w, ho)
	}

	static := []slog.Attr{slog.String("service", ServiceName)}
	if opts.Env != "" {
		static = append(static, slog.String("env", opts.Env))
	}
	if opts.Version != "" {
		static = append(static, slog.String("version", opts.Version))
	}
	return slog.New(traceHandler{next: base.WithAttrs(static)})
}

// LoggerFromConfig builds the process logger from loaded configuration.
// Production defaults to JSON with source locations and development to
// debug level; explicit LOG_LEVEL and LOG_FORMAT values always win.
func LoggerFromConfig(cfg *config.Config, output io.Writer) *slog.Logger {
	opts := Options{Env: cfg.AppEnv, Level: slog.LevelInfo}
	switch {
	case cfg.IsProduction():
		opts.JSON = true
		opts.AddSource = true
	case cfg.IsDevelopment():
		opts.Level = slog.LevelDebug
	}
	if cfg.LogLevel != "" {
		opts.Level = ParseLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		opts.JSON = strings.EqualFold(cfg.LogFormat, "json")
	}
	return NewLogger(output, opts)
}

// ParseLevel maps a level name such as "warn" or "DEBUG+2" to a slog.Level.
// Unrecognized names fall back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// traceHandler copies the context Trace onto every record it handles.
type traceHandler struct {
	next slog.Handler
}

func (h traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := TraceFromContext(ctx).attrs(); len(attrs) > 0 {
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{next: h.next.WithGroup(name)}
}
