// Package persistence stores organizations and their subscription history.
package persistence

import (
	"context"
	"fmt"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/organizations/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const organizationColumns = `id, name, owner_id, plan_id, status, version, created_at, updated_at`

// OrganizationRepository implements domain.OrganizationRepository.
type OrganizationRepository struct {
	conn database.Connection
}

// NewOrganizationRepository creates a repository on conn.
func NewOrganizationRepository(conn database.Connection) *OrganizationRepository {
	return &OrganizationRepository{conn: conn}
}

func (r *OrganizationRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *OrganizationRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save writes the organization row and appends history entries not yet
// stored. Call it inside a unit of work so both land together.
func (r *OrganizationRepository) Save(ctx context.Context, o *domain.Organization) error {
	const op = "save organization"
	ex := r.exec(ctx)
	next := o.Version() + 1

	if o.Version() == 0 {
		_, err := ex.Exec(ctx, r.q(`INSERT INTO organizations (`+organizationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			o.ID(), o.Name(), o.OwnerID(), string(o.PlanID()), string(o.Status()),
			next, o.CreatedAt().UTC(), o.UpdatedAt().UTC(),
		)
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
	} else {
		res, err := ex.Exec(ctx, r.q(`
			UPDATE organizations
			SET name = ?, plan_id = ?, status = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?`),
			o.Name(), string(o.PlanID()), string(o.Status()), next, o.UpdatedAt().UTC(),
			o.ID(), o.Version(),
		)
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		} else if n == 0 {
			return fmt.Errorf("%s %s: %w", op, o.ID(), sharedDomain.ErrConcurrencyConflict)
		}
	}

	// History is append-only; rows already stored are left untouched.
	for i, h := range o.History() {
		_, err := ex.Exec(ctx, r.q(`
			INSERT INTO organization_subscription_history (organization_id, seq, plan_id, status, changed_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (organization_id, seq) DO NOTHING`),
			o.ID(), i+1, string(h.PlanID), string(h.Status), h.ChangedAt.UTC(),
		)
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
	}

	o.SetVersion(next)
	return nil
}

// FindByID loads an organization with its history.
func (r *OrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	row := r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+organizationColumns+` FROM organizations WHERE id = ?`), id)
	st, err := scanOrganization(row)
	if err != nil {
		return nil, err
	}
	if st.History, err = r.history(ctx, id); err != nil {
		return nil, err
	}
	return domain.RehydrateOrganization(st), nil
}

// List returns every organization ordered by creation time.
func (r *OrganizationRepository) List(ctx context.Context) ([]*domain.Organization, error) {
	rows, err := r.exec(ctx).Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY created_at, id`)
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "list organizations", err)
	}

	var states []domain.OrganizationState
	for rows.Next() {
		st, err := scanOrganization(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "list organizations", err)
	}
	// SQLite runs a single connection; the cursor must be closed before the
	// history queries.
	_ = rows.Close()

	out := make([]*domain.Organization, 0, len(states))
	for _, st := range states {
		if st.History, err = r.history(ctx, st.ID); err != nil {
			return nil, err
		}
		out = append(out, domain.RehydrateOrganization(st))
	}
	return out, nil
}

// Delete removes an organization and its history.
func (r *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "delete organization"
	ex := r.exec(ctx)
	if _, err := ex.Exec(ctx, r.q(`DELETE FROM organization_subscription_history WHERE organization_id = ?`), id); err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	res, err := ex.Exec(ctx, r.q(`DELETE FROM organizations WHERE id = ?`), id)
	if err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

func (r *OrganizationRepository) history(ctx context.Context, id uuid.UUID) ([]domain.HistoryEntry, error) {
	const op = "load organization history"
	rows, err := r.exec(ctx).Query(ctx, r.q(`
		SELECT plan_id, status, changed_at
		FROM organization_subscription_history
		WHERE organization_id = ?
		ORDER BY seq`), id)
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var (
			planID, status string
			changedAt      database.Timestamp
		)
		if err := rows.Scan(&planID, &status, &changedAt); err != nil {
			return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
		out = append(out, domain.HistoryEntry{
			PlanID:    billing.PlanID(planID),
			Status:    domain.Status(status),
			ChangedAt: changedAt.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	return out, nil
}

func scanOrganization(row database.Row) (domain.OrganizationState, error) {
	var (
		st               domain.OrganizationState
		planID, status   string
		created, updated database.Timestamp
	)
	err := row.Scan(&st.ID, &st.Name, &st.OwnerID, &planID, &status, &st.Version, &created, &updated)
	if database.IsNoRows(err) {
		return st, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return st, sharedDomain.Wrap(sharedDomain.KindPersistence, "scan organization", err)
	}

	st.PlanID = billing.PlanID(planID)
	if st.Status, err = domain.ParseStatus(status); err != nil {
		return st, sharedDomain.Wrap(sharedDomain.KindPersistence, "scan organization", err)
	}
	st.CreatedAt = created.Time
	st.UpdatedAt = updated.Time
	return st, nil
}

var _ domain.OrganizationRepository = (*OrganizationRepository)(nil)
