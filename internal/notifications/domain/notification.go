// Package domain defines notifications sent to users and the Sender port
// through which they leave the system.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for clients that render them.
type Kind string

const (
	KindSubscriptionCancelled Kind = "subscription_cancelled"
	KindTeamLimitChanged      Kind = "team_limit_changed"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID             uuid.UUID         `json:"id"`
	Kind           Kind              `json:"kind"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// New creates a notification stamped with a fresh id and the current time.
func New(kind Kind, organizationID uuid.UUID, title, body string) Notification {
	return Notification{
		ID:             uuid.New(),
		Kind:           kind,
		OrganizationID: organizationID,
		Title:          title,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
}

// Sender delivers a notification to a user.
type Sender interface {
	Send(ctx context.Context, userID uuid.UUID, n Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, userID uuid.UUID, n Notification) error

func (f SenderFunc) Send(ctx context.Context, userID uuid.UUID, n Notification) error {
	return f(ctx, userID, n)
}
