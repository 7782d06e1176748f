package mcp

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
)

var errNoDatabase = errors.New("requires database connection")

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

func parseOptionalUUID(value string, fallback uuid.UUID) (uuid.UUID, error) {
	if value == "" {
		return fallback, nil
	}
	return parseUUID(value)
}

func parseOptionalTime(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format, use RFC3339: %w", err)
	}
	return parsed, nil
}

// warnings flattens propagation failures for a tool response. A command
// whose downstream handlers failed still succeeded.
func warnings(err error) []string {
	if err == nil {
		return nil
	}
	failures := eventbus.Failures(err)
	if len(failures) == 0 {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, fmt.Sprintf("%s: %v", f.Handler, f.Err))
	}
	return out
}
