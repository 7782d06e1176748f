package domain

import (
	"fmt"
	"strings"
	"time"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// MaxNameLength bounds organization names.
const MaxNameLength = 120

var (
	ErrOrganizationNotFound = sharedDomain.NewKindError(sharedDomain.KindNotFound, "organization not found")
	ErrEmptyName            = sharedDomain.NewKindError(sharedDomain.KindValidation, "organization name cannot be empty")
	ErrNameTooLong          = sharedDomain.NewKindError(sharedDomain.KindValidation, "organization name exceeds maximum length")
	ErrOwnerRequired        = sharedDomain.NewKindError(sharedDomain.KindValidation, "organization owner is required")
)

// HistoryEntry is one step in an organization's subscription history.
type HistoryEntry struct {
	PlanID    billing.PlanID `json:"plan_id"`
	Status    Status         `json:"status"`
	ChangedAt time.Time      `json:"changed_at"`
}

// Organization is a company using the product. Its plan and status mirror
// its open subscription and are changed only by subscription event
// handlers.
type Organization struct {
	sharedDomain.BaseAggregateRoot
	name    string
	ownerID uuid.UUID
	planID  billing.PlanID
	status  Status
	history []HistoryEntry
}

// NewOrganization creates an active organization on the free plan.
func NewOrganization(name string, ownerID uuid.UUID) (*Organization, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if ownerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}

	o := &Organization{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		ownerID:           ownerID,
		planID:            billing.FreePlan,
		status:            StatusActive,
	}
	o.Record(&OrganizationCreated{
		BaseEvent: sharedDomain.NewBaseEvent(o.ID(), AggregateType, EventOrganizationCreated),
		Name:      name,
		OwnerID:   ownerID,
	})
	return o, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", ErrEmptyName
	case len(name) > MaxNameLength:
		return "", ErrNameTooLong
	}
	return name, nil
}

func (o *Organization) Name() string           { return o.name }
func (o *Organization) OwnerID() uuid.UUID     { return o.ownerID }
func (o *Organization) PlanID() billing.PlanID { return o.planID }
func (o *Organization) Status() Status         { return o.status }

// History returns a copy of the subscription history, oldest first.
func (o *Organization) History() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// Rename changes the display name.
func (o *Organization) Rename(name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	if name == o.name {
		return nil
	}
	o.name = name
	o.Record(&OrganizationRenamed{
		BaseEvent: sharedDomain.NewBaseEvent(o.ID(), AggregateType, EventOrganizationRenamed),
		Name:      name,
	})
	return nil
}

// SyncSubscription aligns plan and status with the subscription and
// appends a history entry when the pair differs from the latest one.
// Applying the same pair again changes nothing. Reports whether anything
// changed.
//
// Propagation only: call from subscription event handlers.
func (o *Organization) SyncSubscription(planID billing.PlanID, status Status, at time.Time) (bool, error) {
	if planID == "" {
		return false, fmt.Errorf("sync subscription: %w", billing.ErrUnknownPlan)
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return false, err
	}

	changed := false
	if planID != o.planID {
		o.Record(&OrganizationPlanChanged{
			BaseEvent: sharedDomain.NewBaseEvent(o.ID(), AggregateType, EventOrganizationPlanChanged),
			OldPlanID: o.planID,
			NewPlanID: planID,
		})
		o.planID = planID
		changed = true
	}
	if status != o.status {
		o.Record(&OrganizationStatusChanged{
			BaseEvent: sharedDomain.NewBaseEvent(o.ID(), AggregateType, EventOrganizationStatusChanged),
			OldStatus: o.status,
			NewStatus: status,
		})
		o.status = status
		changed = true
	}

	if n := len(o.history); n == 0 || o.history[n-1].PlanID != planID || o.history[n-1].Status != status {
		o.history = append(o.history, HistoryEntry{PlanID: planID, Status: status, ChangedAt: at.UTC()})
		changed = true
	}
	if changed {
		o.Touch()
	}
	return changed, nil
}

// RevertToFree drops the organization to the free plan and deactivates it.
//
// Propagation only.
func (o *Organization) RevertToFree(at time.Time) (bool, error) {
	return o.SyncSubscription(billing.FreePlan, StatusInactive, at)
}

// OrganizationState is the persisted form of an Organization.
type OrganizationState struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	PlanID    billing.PlanID
	Status    Status
	History   []HistoryEntry
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RehydrateOrganization restores an organization from storage.
func RehydrateOrganization(st OrganizationState) *Organization {
	entity := sharedDomain.RehydrateBaseEntity(st.ID, st.CreatedAt, st.UpdatedAt)
	return &Organization{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, st.Version),
		name:              st.Name,
		ownerID:           st.OwnerID,
		planID:            st.PlanID,
		status:            st.Status,
		history:           st.History,
	}
}
