// Package application exposes organization state to other bounded
// contexts.
package application

import (
	"context"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/organizations/domain"
	"github.com/google/uuid"
)

// CurrentPlans resolves an organization's plan from its stored state. It
// satisfies the policy service's OrganizationPlans port.
type CurrentPlans struct {
	repo domain.OrganizationRepository
}

func NewCurrentPlans(repo domain.OrganizationRepository) *CurrentPlans {
	return &CurrentPlans{repo: repo}
}

// CurrentPlan returns the plan the organization is on.
func (p *CurrentPlans) CurrentPlan(ctx context.Context, organizationID uuid.UUID) (billing.PlanID, error) {
	org, err := p.repo.FindByID(ctx, organizationID)
	if err != nil {
		return "", err
	}
	return org.PlanID(), nil
}
