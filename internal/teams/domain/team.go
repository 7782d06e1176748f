package domain

import (
	"strings"
	"time"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

const MaxNameLength = 120

var (
	ErrTeamNotFound       = sharedDomain.NewKindError(sharedDomain.KindNotFound, "team not found")
	ErrNotMember          = sharedDomain.NewKindError(sharedDomain.KindNotFound, "user is not a member of the team")
	ErrEmptyName          = sharedDomain.NewKindError(sharedDomain.KindValidation, "team name cannot be empty")
	ErrNameTooLong        = sharedDomain.NewKindError(sharedDomain.KindValidation, "team name exceeds maximum length")
	ErrUnknownRole        = sharedDomain.NewKindError(sharedDomain.KindValidation, "unknown team role")
	ErrInvalidMemberLimit = sharedDomain.NewKindError(sharedDomain.KindValidation, "invalid team member limit")
	ErrAlreadyMember      = sharedDomain.NewKindError(sharedDomain.KindValidation, "user is already a member of the team")
	ErrMemberLimitReached = sharedDomain.NewKindError(sharedDomain.KindValidation, "team member limit reached")
	ErrTeamLimitReached   = sharedDomain.NewKindError(sharedDomain.KindValidation, "organization team limit reached")
	ErrLastOwner          = sharedDomain.NewKindError(sharedDomain.KindValidation, "cannot remove the last owner of a team")
)

// Team is a group of sales reps inside an organization. Its member cap
// follows the organization's plan.
type Team struct {
	sharedDomain.BaseAggregateRoot
	organizationID uuid.UUID
	name           string
	maxMembers     int
	members        []Member
}

// NewTeam creates a team capped at maxMembers with ownerID as its first
// member.
func NewTeam(organizationID uuid.UUID, name string, maxMembers int, ownerID uuid.UUID) (*Team, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, ErrEmptyName
	case len(name) > MaxNameLength:
		return nil, ErrNameTooLong
	case !validLimit(maxMembers):
		return nil, ErrInvalidMemberLimit
	}

	t := &Team{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		organizationID:    organizationID,
		name:              name,
		maxMembers:        maxMembers,
	}
	t.members = []Member{{UserID: ownerID, Role: RoleOwner, JoinedAt: t.CreatedAt()}}
	t.Record(&TeamCreated{
		BaseEvent:      sharedDomain.NewBaseEvent(t.ID(), AggregateType, EventTeamCreated),
		OrganizationID: organizationID,
		Name:           name,
		OwnerID:        ownerID,
		MaxMembers:     maxMembers,
	})
	return t, nil
}

func validLimit(n int) bool { return n > 0 || n == billing.Unlimited }

func (t *Team) OrganizationID() uuid.UUID { return t.organizationID }
func (t *Team) Name() string              { return t.name }
func (t *Team) MaxMembers() int           { return t.maxMembers }
func (t *Team) MemberCount() int          { return len(t.members) }

// Members returns a copy of the roster in join order.
func (t *Team) Members() []Member {
	out := make([]Member, len(t.members))
	copy(out, t.members)
	return out
}

// HasMember reports whether userID is on the team.
func (t *Team) HasMember(userID uuid.UUID) bool {
	return t.indexOf(userID) >= 0
}

func (t *Team) indexOf(userID uuid.UUID) int {
	for i, m := range t.members {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

// ExcessMemberCount is how many members the team holds beyond its cap.
func (t *Team) ExcessMemberCount() int {
	if t.maxMembers == billing.Unlimited {
		return 0
	}
	return max(0, len(t.members)-t.maxMembers)
}

// AddMember seats userID. Fails when the team is full or the user already
// belongs to it.
func (t *Team) AddMember(userID uuid.UUID, role Role, now time.Time) error {
	if t.HasMember(userID) {
		return ErrAlreadyMember
	}
	if t.maxMembers != billing.Unlimited && len(t.members) >= t.maxMembers {
		return ErrMemberLimitReached
	}
	if role == "" {
		role = RoleMember
	}

	t.members = append(t.members, Member{UserID: userID, Role: role, JoinedAt: now.UTC()})
	t.Record(&TeamMemberAdded{
		BaseEvent:      sharedDomain.NewBaseEvent(t.ID(), AggregateType, EventTeamMemberAdded),
		OrganizationID: t.organizationID,
		UserID:         userID,
		Role:           role,
	})
	return nil
}

// RemoveMember takes userID off the team. The last owner cannot leave.
func (t *Team) RemoveMember(userID uuid.UUID) error {
	i := t.indexOf(userID)
	if i < 0 {
		return ErrNotMember
	}
	if t.members[i].Role == RoleOwner && t.ownerCount() == 1 {
		return ErrLastOwner
	}

	t.members = append(t.members[:i:i], t.members[i+1:]...)
	t.Record(&TeamMemberRemoved{
		BaseEvent:      sharedDomain.NewBaseEvent(t.ID(), AggregateType, EventTeamMemberRemoved),
		OrganizationID: t.organizationID,
		UserID:         userID,
	})
	return nil
}

func (t *Team) ownerCount() int {
	n := 0
	for _, m := range t.members {
		if m.Role == RoleOwner {
			n++
		}
	}
	return n
}

// ApplyMemberLimit sets the member cap. Existing members are never
// removed; a team above the new cap reports the difference through
// ExcessMemberCount. Reports whether the cap changed.
//
// Propagation only: call from the organization limit propagator.
func (t *Team) ApplyMemberLimit(maxMembers int) (bool, error) {
	if !validLimit(maxMembers) {
		return false, ErrInvalidMemberLimit
	}
	if maxMembers == t.maxMembers {
		return false, nil
	}

	old := t.maxMembers
	t.maxMembers = maxMembers
	t.Record(&TeamMemberLimitChanged{
		BaseEvent:         sharedDomain.NewBaseEvent(t.ID(), AggregateType, EventTeamMemberLimitChanged),
		OrganizationID:    t.organizationID,
		OldMaxMembers:     old,
		NewMaxMembers:     maxMembers,
		ExcessMemberCount: t.ExcessMemberCount(),
	})
	return true, nil
}

// TeamState is the persisted form of a Team.
type TeamState struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	MaxMembers     int
	Members        []Member
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RehydrateTeam restores a team from storage.
func RehydrateTeam(st TeamState) *Team {
	entity := sharedDomain.RehydrateBaseEntity(st.ID, st.CreatedAt, st.UpdatedAt)
	return &Team{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, st.Version),
		organizationID:    st.OrganizationID,
		name:              st.Name,
		maxMembers:        st.MaxMembers,
		members:           st.Members,
	}
}
