package domain

import (
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

const AggregateType = "Team"

const (
	EventTeamCreated            = "teams.team.created"
	EventTeamMemberAdded        = "teams.team.member_added"
	EventTeamMemberRemoved      = "teams.team.member_removed"
	EventTeamMemberLimitChanged = "teams.team.member_limit_changed"
)

type TeamCreated struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	OwnerID        uuid.UUID `json:"owner_id"`
	MaxMembers     int       `json:"max_members"`
}

type TeamMemberAdded struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Role           Role      `json:"role"`
}

type TeamMemberRemoved struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
}

// TeamMemberLimitChanged is emitted when plan propagation resizes a team.
// Members are kept; ExcessMemberCount tells how many seats over the new
// limit the team now is.
type TeamMemberLimitChanged struct {
	sharedDomain.BaseEvent
	OrganizationID    uuid.UUID `json:"organization_id"`
	OldMaxMembers     int       `json:"old_max_members"`
	NewMaxMembers     int       `json:"new_max_members"`
	ExcessMemberCount int       `json:"excess_member_count"`
}
