package domain

import sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"

const (
	AggregateType = "User"

	EventUserRegistered = "identity.user.registered"
	EventUserRenamed    = "identity.user.renamed"
)

// UserRegistered is emitted when a sales rep or manager signs up.
type UserRegistered struct {
	sharedDomain.BaseEvent
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserRenamed is emitted when the display name changes.
type UserRenamed struct {
	sharedDomain.BaseEvent
	Name string `json:"name"`
}
