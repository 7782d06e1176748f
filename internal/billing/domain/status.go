package domain

import "fmt"

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusCreated  Status = "created"
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

var transitions = map[Status][]Status{
	StatusCreated:  {StatusActive},
	StatusActive:   {StatusPaused, StatusPastDue, StatusCanceled},
	StatusPaused:   {StatusActive, StatusCanceled},
	StatusPastDue:  {StatusActive, StatusCanceled},
	StatusCanceled: nil,
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusCanceled
}

// ParseStatus parses a persisted or user-supplied status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, v)
	}
	return s, nil
}
