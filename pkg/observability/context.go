package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Attribute keys shared by every Arena log line.
const (
	CorrelationIDKey = "correlation_id"
	UserIDKey        = "user_id"
	CommandKey       = "command"
	DurationKey      = "duration_ms"
)

// Trace is the per-command data the logger copies onto each record.
type Trace struct {
	CorrelationID string
	UserID        string
	Command       string
}

func (t Trace) attrs() []slog.Attr {
	out := make([]slog.Attr, 0, 3)
	if t.Command != "" {
		out = append(out, slog.String(CommandKey, t.Command))
	}
	if t.CorrelationID != "" {
		out = append(out, slog.String(CorrelationIDKey, t.CorrelationID))
	}
	if t.UserID != "" {
		out = append(out, slog.String(UserIDKey, t.UserID))
	}
	return out
}

type traceKey struct{}

// WithTrace stores t on ctx, replacing any trace already there.
func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFromContext returns the trace stored on ctx, or the zero Trace.
func TraceFromContext(ctx context.Context) Trace {
	if ctx == nil {
		return Trace{}
	}
	t, _ := ctx.Value(traceKey{}).(Trace)
	return t
}

// WithCorrelationID sets the correlation id, generating one when id is empty.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	t := TraceFromContext(ctx)
	t.CorrelationID = id
	return WithTrace(ctx, t)
}

// WithUserID sets the acting user on the trace.
func WithUserID(ctx context.Context, userID string) context.Context {
	t := TraceFromContext(ctx)
	t.UserID = userID
	return WithTrace(ctx, t)
}

func CorrelationIDFromContext(ctx context.Context) string { return TraceFromContext(ctx).CorrelationID }

func UserIDFromContext(ctx context.Context) string { return TraceFromContext(ctx).UserID }

func CommandFromContext(ctx context.Context) string { return TraceFromContext(ctx).Command }

// NewCommandContext starts a correlation chain for one CLI or MCP command.
// The returned id is the correlation id stored on ctx.
func NewCommandContext(ctx context.Context, command, userID string) (context.Context, uuid.UUID) {
	id := uuid.New()
	return WithTrace(ctx, Trace{
		CorrelationID: id.String(),
		UserID:        userID,
		Command:       command,
	}), id
}
