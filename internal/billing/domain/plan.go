package domain

import (
	"fmt"
	"sort"
)

// PlanID identifies a subscription plan.
type PlanID string

// FreePlan is the plan every organization falls back to.
const FreePlan PlanID = "free"

// Metric names a numeric plan limit.
type Metric string

const (
	MetricTeamMembers Metric = "team_members"
	MetricTeams       Metric = "teams"
	MetricStorageGB   Metric = "storage_gb"
)

// Unlimited marks a metric without a ceiling.
const Unlimited = -1

// Plan is immutable reference data: what an organization on this plan may
// use and how much of it.
type Plan struct {
	ID       PlanID         `yaml:"id" json:"id"`
	Name     string         `yaml:"name" json:"name"`
	Features []string       `yaml:"features" json:"features"`
	Limits   map[Metric]int `yaml:"limits" json:"limits"`
}

// HasFeature reports whether the plan includes feature.
func (p Plan) HasFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Limit returns the ceiling for metric. A metric the plan does not list
// has a ceiling of zero.
func (p Plan) Limit(metric Metric) int {
	return p.Limits[metric]
}

// Allows reports whether value stays within the plan's ceiling for metric.
func (p Plan) Allows(metric Metric, value int) bool {
	limit := p.Limit(metric)
	return limit == Unlimited || value <= limit
}

// Catalog is the set of plans the product sells.
type Catalog struct {
	plans map[PlanID]Plan
}

// NewCatalog validates plans and indexes them by id. The free plan must be
// present.
func NewCatalog(plans []Plan) (*Catalog, error) {
	c := &Catalog{plans: make(map[PlanID]Plan, len(plans))}
	for _, p := range plans {
		if p.ID == "" {
			return nil, fmt.Errorf("plan %q has no id", p.Name)
		}
		if _, dup := c.plans[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan %q", p.ID)
		}
		if p.Limit(MetricTeamMembers) == 0 {
			return nil, fmt.Errorf("plan %q must define a %s limit", p.ID, MetricTeamMembers)
		}
		for metric, limit := range p.Limits {
			if limit < 0 && limit != Unlimited {
				return nil, fmt.Errorf("plan %q has invalid %s limit %d", p.ID, metric, limit)
			}
		}
		c.plans[p.ID] = p
	}
	if _, ok := c.plans[FreePlan]; !ok {
		return nil, fmt.Errorf("catalog must contain the %q plan", FreePlan)
	}
	return c, nil
}

// Plan looks up a plan by id.
func (c *Catalog) Plan(id PlanID) (Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, id)
	}
	return p, nil
}

// Limit is shorthand for Plan(id).Limit(metric).
func (c *Catalog) Limit(id PlanID, metric Metric) (int, error) {
	p, err := c.Plan(id)
	if err != nil {
		return 0, err
	}
	return p.Limit(metric), nil
}

// Plans returns all plans ordered by team member limit, then id. Plans
// without a member ceiling come last.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].Limit(MetricTeamMembers), out[j].Limit(MetricTeamMembers)
		if li != lj {
			if li == Unlimited || lj == Unlimited {
				return lj == Unlimited
			}
			return li < lj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
