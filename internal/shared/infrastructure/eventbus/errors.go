package eventbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// HandlerFailure records one handler that failed for one event.
type HandlerFailure struct {
	Handler   string
	EventType string
	EventID   uuid.UUID
	Err       error
}

func (f HandlerFailure) Error() string {
	return fmt.Sprintf("%s on %s: %v", f.Handler, f.EventType, f.Err)
}

func (f HandlerFailure) Unwrap() error { return f.Err }

// PublishError is returned by Publish and PublishAll when at least one
// handler failed. Handlers that succeeded are not listed.
type PublishError struct {
	Failures []HandlerFailure
}

func (e *PublishError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d event handler(s) failed: %s", len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes every handler error to errors.Is and errors.As.
func (e *PublishError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

func (e *PublishError) add(handler string, event domain.DomainEvent, err error) {
	e.Failures = append(e.Failures, HandlerFailure{
		Handler:   handler,
		EventType: event.EventType(),
		EventID:   event.EventID(),
		Err:       err,
	})
}

func (e *PublishError) merge(err error) {
	if err == nil {
		return
	}
	var other *PublishError
	if errors.As(err, &other) {
		e.Failures = append(e.Failures, other.Failures...)
		return
	}
	e.Failures = append(e.Failures, HandlerFailure{Err: err})
}

func (e *PublishError) errOrNil() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e
}

// Failures extracts handler failures from an error returned by the bus.
func Failures(err error) []HandlerFailure {
	var perr *PublishError
	if errors.As(err, &perr) {
		return perr.Failures
	}
	return nil
}
