package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver     Driver
	URL        string
	SQLitePath string
	// MaxConns applies to PostgreSQL only.
	MaxConns int
}

type opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]opener{}

// RegisterDriver makes a backend available to Open. Driver packages call
// it from init, so importing them for side effects is enough.
func RegisterDriver(d Driver, fn func(ctx context.Context, cfg Config) (Connection, error)) {
	openers[d] = fn
}

// Open connects to the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	d := cfg.Driver
	if d == "" || d == "auto" {
		d = DetectDriver(cfg.URL)
	}
	open, ok := openers[d]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", d)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is where local mode keeps its database.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".arena", "arena.db")
}
