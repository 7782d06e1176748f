package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is a member's role within a team.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// ParseRole parses a role; the empty string means RoleMember.
func ParseRole(v string) (Role, error) {
	switch r := Role(v); r {
	case "":
		return RoleMember, nil
	case RoleOwner, RoleManager, RoleMember:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, v)
}

// Member is a user's seat on a team.
type Member struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
