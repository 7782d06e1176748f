package readmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	organizations "github.com/felixgeelhaar/arena/internal/organizations/domain"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
	"github.com/google/uuid"
)

// Sub-keys for views derived from an organization.
const (
	SubKeyTeams        = "teams"
	SubKeySubscription = "subscription"
)

// OrganizationKey, TeamKey and SubscriptionKey build keys for the
// aggregate views.
func OrganizationKey(id uuid.UUID) Key {
	return Key{AggregateType: organizations.AggregateType, AggregateID: id}
}

func OrganizationTeamsKey(id uuid.UUID) Key {
	return Key{AggregateType: organizations.AggregateType, AggregateID: id, SubKey: SubKeyTeams}
}

func OrganizationSubscriptionKey(id uuid.UUID) Key {
	return Key{AggregateType: organizations.AggregateType, AggregateID: id, SubKey: SubKeySubscription}
}

func TeamKey(id uuid.UUID) Key {
	return Key{AggregateType: teams.AggregateType, AggregateID: id}
}

func SubscriptionKey(id uuid.UUID) Key {
	return Key{AggregateType: billing.AggregateType, AggregateID: id}
}

type OrganizationView struct {
	ID      uuid.UUID                    `json:"id"`
	Name    string                       `json:"name"`
	OwnerID uuid.UUID                    `json:"owner_id"`
	PlanID  billing.PlanID               `json:"plan_id"`
	Status  organizations.Status         `json:"status"`
	History []organizations.HistoryEntry `json:"history"`
	Version int                          `json:"version"`
}

func NewOrganizationView(o *organizations.Organization) OrganizationView {
	return OrganizationView{
		ID:      o.ID(),
		Name:    o.Name(),
		OwnerID: o.OwnerID(),
		PlanID:  o.PlanID(),
		Status:  o.Status(),
		History: o.History(),
		Version: o.Version(),
	}
}

type TeamView struct {
	ID                uuid.UUID      `json:"id"`
	OrganizationID    uuid.UUID      `json:"organization_id"`
	Name              string         `json:"name"`
	MaxMembers        int            `json:"max_members"`
	MemberCount       int            `json:"member_count"`
	ExcessMemberCount int            `json:"excess_member_count"`
	Members           []teams.Member `json:"members"`
	Version           int            `json:"version"`
}

func NewTeamView(t *teams.Team) TeamView {
	return TeamView{
		ID:                t.ID(),
		OrganizationID:    t.OrganizationID(),
		Name:              t.Name(),
		MaxMembers:        t.MaxMembers(),
		MemberCount:       t.MemberCount(),
		ExcessMemberCount: t.ExcessMemberCount(),
		Members:           t.Members(),
		Version:           t.Version(),
	}
}

// WithMember returns a copy of v with m seated, for optimistic display.
func (v TeamView) WithMember(m teams.Member) TeamView {
	members := make([]teams.Member, 0, len(v.Members)+1)
	members = append(members, v.Members...)
	v.Members = append(members, m)
	return v.recount()
}

// WithoutMember returns a copy of v without userID.
func (v TeamView) WithoutMember(userID uuid.UUID) TeamView {
	members := make([]teams.Member, 0, len(v.Members))
	for _, m := range v.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	v.Members = members
	return v.recount()
}

func (v TeamView) recount() TeamView {
	v.MemberCount = len(v.Members)
	v.ExcessMemberCount = 0
	if v.MaxMembers != billing.Unlimited {
		v.ExcessMemberCount = max(0, v.MemberCount-v.MaxMembers)
	}
	return v
}

type SubscriptionView struct {
	ID                uuid.UUID      `json:"id"`
	OrganizationID    uuid.UUID      `json:"organization_id"`
	PlanID            billing.PlanID `json:"plan_id"`
	Status            billing.Status `json:"status"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           *time.Time     `json:"end_date,omitempty"`
	CancelAtPeriodEnd bool           `json:"cancel_at_period_end"`
	Version           int            `json:"version"`
}

func NewSubscriptionView(s *billing.Subscription) SubscriptionView {
	return SubscriptionView{
		ID:                s.ID(),
		OrganizationID:    s.OrganizationID(),
		PlanID:            s.PlanID(),
		Status:            s.Status(),
		StartDate:         s.StartDate(),
		EndDate:           s.EndDate(),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd(),
		Version:           s.Version(),
	}
}

// NewRepositoryLoader loads views straight from the repositories.
func NewRepositoryLoader(
	orgs organizations.OrganizationRepository,
	teamRepo teams.TeamRepository,
	subs billing.SubscriptionRepository,
) Router {
	r := Router{}
	r.Handle(organizations.AggregateType, "", LoaderFunc(func(ctx context.Context, key Key) (any, error) {
		o, err := orgs.FindByID(ctx, key.AggregateID)
		if err != nil {
			return nil, err
		}
		return NewOrganizationView(o), nil
	}))
	r.Handle(organizations.AggregateType, SubKeyTeams, LoaderFunc(func(ctx context.Context, key Key) (any, error) {
		list, err := teamRepo.FindByOrganization(ctx, key.AggregateID)
		if err != nil {
			return nil, err
		}
		views := make([]TeamView, len(list))
		for i, t := range list {
			views[i] = NewTeamView(t)
		}
		return views, nil
	}))
	r.Handle(organizations.AggregateType, SubKeySubscription, LoaderFunc(func(ctx context.Context, key Key) (any, error) {
		s, err := subs.FindOpenByOrganization(ctx, key.AggregateID)
		if err != nil {
			return nil, err
		}
		return NewSubscriptionView(s), nil
	}))
	r.Handle(teams.AggregateType, "", LoaderFunc(func(ctx context.Context, key Key) (any, error) {
		t, err := teamRepo.FindByID(ctx, key.AggregateID)
		if err != nil {
			return nil, err
		}
		return NewTeamView(t), nil
	}))
	r.Handle(billing.AggregateType, "", LoaderFunc(func(ctx context.Context, key Key) (any, error) {
		s, err := subs.FindByID(ctx, key.AggregateID)
		if err != nil {
			return nil, err
		}
		return NewSubscriptionView(s), nil
	}))
	return r
}

// DecodeView decodes a JSON snapshot into the view type for key.
func DecodeView(key Key, data []byte) (any, error) {
	var decode func([]byte) (any, error)
	switch routeName(key.AggregateType, key.SubKey) {
	case organizations.AggregateType:
		decode = decodeAs[OrganizationView]
	case routeName(organizations.AggregateType, SubKeyTeams):
		decode = decodeAs[[]TeamView]
	case routeName(organizations.AggregateType, SubKeySubscription), billing.AggregateType:
		decode = decodeAs[SubscriptionView]
	case teams.AggregateType:
		decode = decodeAs[TeamView]
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownViewKey, key)
	}

	v, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", key, err)
	}
	return v, nil
}

func decodeAs[T any](data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
