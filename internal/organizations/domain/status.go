package domain

import (
	"fmt"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
)

// Status is an organization's standing, derived from its subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusInactive Status = "inactive"
)

var ErrUnknownStatus = sharedDomain.NewKindError(sharedDomain.KindValidation, "unknown organization status")

// StatusForSubscription maps a subscription status onto the organization.
// A past-due subscription keeps the organization active.
func StatusForSubscription(s billing.Status) Status {
	switch s {
	case billing.StatusPaused:
		return StatusPaused
	case billing.StatusCanceled:
		return StatusInactive
	default:
		return StatusActive
	}
}

// ParseStatus parses a persisted status.
func ParseStatus(v string) (Status, error) {
	switch s := Status(v); s {
	case StatusActive, StatusPaused, StatusInactive:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, v)
}
