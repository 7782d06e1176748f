package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
)

// ErrNotInitialized is returned by commands that need the database.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// RequireApp returns the global app or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}

// ParseID parses a UUID argument, naming it in the error.
func ParseID(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return id, nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ReportPropagation prints downstream handler failures. The command itself
// succeeded, so these are warnings rather than errors.
func ReportPropagation(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	failures := eventbus.Failures(err)
	if len(failures) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return
	}
	for _, f := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s failed: %v\n", f.Handler, f.Err)
	}
	Logger().WarnContext(cmd.Context(), "propagation incomplete", "failures", len(failures))
}
