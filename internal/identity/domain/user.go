package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = sharedDomain.NewKindError(sharedDomain.KindNotFound, "user not found")
	ErrEmailAlreadyExists = sharedDomain.NewKindError(sharedDomain.KindValidation, "email is already registered")
)

// User is a person who can own organizations and join teams.
type User struct {
	sharedDomain.BaseAggregateRoot
	email Email
	name  Name
}

// NewUser registers a user.
func NewUser(email Email, name Name) *User {
	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		email:             email,
		name:              name,
	}
	u.Record(&UserRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(u.ID(), AggregateType, EventUserRegistered),
		Email:     email.String(),
		Name:      name.String(),
	})
	return u
}

func (u *User) Email() Email { return u.email }
func (u *User) Name() Name   { return u.name }

// Rename changes the display name.
func (u *User) Rename(name Name) {
	if u.name == name {
		return
	}
	u.name = name
	u.Record(&UserRenamed{
		BaseEvent: sharedDomain.NewBaseEvent(u.ID(), AggregateType, EventUserRenamed),
		Name:      name.String(),
	})
}

// RehydrateUser restores a user from storage.
func RehydrateUser(id uuid.UUID, email Email, name Name, version int, createdAt, updatedAt time.Time) *User {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, version),
		email:             email,
		name:              name,
	}
}
