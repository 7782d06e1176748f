package domain

import (
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

const AggregateType = "Organization"

const (
	EventOrganizationCreated       = "organizations.organization.created"
	EventOrganizationRenamed       = "organizations.organization.renamed"
	EventOrganizationPlanChanged   = "organizations.organization.plan_changed"
	EventOrganizationStatusChanged = "organizations.organization.status_changed"
)

type OrganizationCreated struct {
	sharedDomain.BaseEvent
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

type OrganizationRenamed struct {
	sharedDomain.BaseEvent
	Name string `json:"name"`
}

// OrganizationPlanChanged is emitted after the organization follows its
// subscription onto another plan. Team limits are recomputed from NewPlanID.
type OrganizationPlanChanged struct {
	sharedDomain.BaseEvent
	OldPlanID billing.PlanID `json:"old_plan_id"`
	NewPlanID billing.PlanID `json:"new_plan_id"`
}

type OrganizationStatusChanged struct {
	sharedDomain.BaseEvent
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}
