// Package application holds billing use cases that are queried rather
// than commanded.
package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/google/uuid"
)

// OrganizationPlans resolves the plan an organization is currently on.
type OrganizationPlans interface {
	CurrentPlan(ctx context.Context, organizationID uuid.UUID) (domain.PlanID, error)
}

// AccessDecision is the answer to a policy query.
type AccessDecision struct {
	Allowed bool          `json:"allowed"`
	PlanID  domain.PlanID `json:"plan_id"`
	Feature string        `json:"feature,omitempty"`
	Metric  domain.Metric `json:"metric,omitempty"`
	Value   int           `json:"value,omitempty"`
	Limit   int           `json:"limit,omitempty"`
	Reason  string        `json:"reason,omitempty"`
}

// PolicyService answers feature and limit questions for an organization
// from its current plan. It holds no state of its own.
type PolicyService struct {
	catalog *domain.Catalog
	plans   OrganizationPlans
}

// NewPolicyService creates a PolicyService.
func NewPolicyService(catalog *domain.Catalog, plans OrganizationPlans) *PolicyService {
	return &PolicyService{catalog: catalog, plans: plans}
}

// Catalog exposes the plan catalog the service decides against.
func (s *PolicyService) Catalog() *domain.Catalog { return s.catalog }

func (s *PolicyService) planFor(ctx context.Context, orgID uuid.UUID) (domain.Plan, error) {
	id, err := s.plans.CurrentPlan(ctx, orgID)
	if err != nil {
		return domain.Plan{}, err
	}
	return s.catalog.Plan(id)
}

// HasAccess reports whether the organization's plan includes feature.
func (s *PolicyService) HasAccess(ctx context.Context, feature string, orgID uuid.UUID) (AccessDecision, error) {
	plan, err := s.planFor(ctx, orgID)
	if err != nil {
		return AccessDecision{}, err
	}

	d := AccessDecision{Allowed: plan.HasFeature(feature), PlanID: plan.ID, Feature: feature}
	if !d.Allowed {
		d.Reason = fmt.Sprintf("feature %q is not included in the %s plan", feature, plan.ID)
	}
	return d, nil
}

// IsWithinLimits reports whether value stays within the plan's ceiling for
// metric.
func (s *PolicyService) IsWithinLimits(ctx context.Context, metric domain.Metric, value int, orgID uuid.UUID) (AccessDecision, error) {
	plan, err := s.planFor(ctx, orgID)
	if err != nil {
		return AccessDecision{}, err
	}

	d := AccessDecision{
		Allowed: plan.Allows(metric, value),
		PlanID:  plan.ID,
		Metric:  metric,
		Value:   value,
		Limit:   plan.Limit(metric),
	}
	if !d.Allowed {
		d.Reason = fmt.Sprintf("%s of %d exceeds the %s plan limit of %d", metric, value, plan.ID, d.Limit)
	}
	return d, nil
}
