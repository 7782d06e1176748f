// Package persistence stores subscriptions in SQLite or PostgreSQL.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const subscriptionColumns = `id, organization_id, plan_id, status, start_date, end_date,
	cancel_at_period_end, version, created_at, updated_at`

// SubscriptionRepository implements domain.SubscriptionRepository.
type SubscriptionRepository struct {
	conn database.Connection
}

// NewSubscriptionRepository creates a repository on conn.
func NewSubscriptionRepository(conn database.Connection) *SubscriptionRepository {
	return &SubscriptionRepository{conn: conn}
}

func (r *SubscriptionRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SubscriptionRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts a new subscription or updates an existing one, guarded by
// the aggregate version.
func (r *SubscriptionRepository) Save(ctx context.Context, s *domain.Subscription) error {
	const op = "save subscription"
	ex := r.exec(ctx)
	next := s.Version() + 1

	if s.Version() == 0 {
		_, err := ex.Exec(ctx, r.q(`
			INSERT INTO subscriptions (`+subscriptionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			s.ID(), s.OrganizationID(), string(s.PlanID()), string(s.Status()),
			s.StartDate().UTC(), database.NullableTime(s.EndDate()), s.CancelAtPeriodEnd(),
			next, s.CreatedAt().UTC(), s.UpdatedAt().UTC(),
		)
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, domain.ErrOpenSubscriptionExists)
		}
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
		s.SetVersion(next)
		return nil
	}

	res, err := ex.Exec(ctx, r.q(`
		UPDATE subscriptions
		SET plan_id = ?, status = ?, end_date = ?, cancel_at_period_end = ?,
		    version = ?, updated_at = ?
		WHERE id = ? AND version = ?`),
		string(s.PlanID()), string(s.Status()), database.NullableTime(s.EndDate()), s.CancelAtPeriodEnd(),
		next, s.UpdatedAt().UTC(), s.ID(), s.Version(),
	)
	if err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	} else if n == 0 {
		return fmt.Errorf("%s %s: %w", op, s.ID(), sharedDomain.ErrConcurrencyConflict)
	}
	s.SetVersion(next)
	return nil
}

// FindByID loads a subscription.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	row := r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`), id)
	return scanSubscription(row)
}

// FindOpenByOrganization loads the organization's non-canceled subscription.
func (r *SubscriptionRepository) FindOpenByOrganization(ctx context.Context, organizationID uuid.UUID) (*domain.Subscription, error) {
	row := r.exec(ctx).QueryRow(ctx, r.q(`
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE organization_id = ? AND status <> 'canceled'`), organizationID)
	return scanSubscription(row)
}

// FindDueCancellations lists scheduled cancellations that are due.
func (r *SubscriptionRepository) FindDueCancellations(ctx context.Context, now time.Time) ([]*domain.Subscription, error) {
	rows, err := r.exec(ctx).Query(ctx, r.q(`
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE cancel_at_period_end = ? AND status <> 'canceled' AND end_date <= ?
		ORDER BY end_date`), true, now.UTC())
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "find due cancellations", err)
	}
	defer rows.Close()

	var out []*domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "find due cancellations", err)
	}
	return out, nil
}

// Delete removes a subscription.
func (r *SubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.exec(ctx).Exec(ctx, r.q(`DELETE FROM subscriptions WHERE id = ?`), id)
	if err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, "delete subscription", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func scanSubscription(row database.Row) (*domain.Subscription, error) {
	var (
		st               domain.SubscriptionState
		planID, status   string
		start, end       database.Timestamp
		created, updated database.Timestamp
	)
	err := row.Scan(&st.ID, &st.OrganizationID, &planID, &status, &start, &end,
		&st.CancelAtPeriodEnd, &st.Version, &created, &updated)
	if database.IsNoRows(err) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "scan subscription", err)
	}

	st.PlanID = domain.PlanID(planID)
	st.Status = domain.Status(status)
	st.StartDate = start.Time
	st.EndDate = end.Ptr()
	st.CreatedAt = created.Time
	st.UpdatedAt = updated.Time
	return domain.RehydrateSubscription(st), nil
}

var _ domain.SubscriptionRepository = (*SubscriptionRepository)(nil)
