// Package persistence stores teams and their rosters.
package persistence

import (
	"context"
	"fmt"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/arena/internal/teams/domain"
	"github.com/google/uuid"
)

const teamColumns = `id, organization_id, name, max_members, version, created_at, updated_at`

// TeamRepository implements domain.TeamRepository.
type TeamRepository struct {
	conn database.Connection
}

// NewTeamRepository creates a repository on conn.
func NewTeamRepository(conn database.Connection) *TeamRepository {
	return &TeamRepository{conn: conn}
}

func (r *TeamRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *TeamRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save writes the team row and replaces its roster. Call it inside a unit
// of work.
func (r *TeamRepository) Save(ctx context.Context, t *domain.Team) error {
	const op = "save team"
	ex := r.exec(ctx)
	next := t.Version() + 1

	if t.Version() == 0 {
		_, err := ex.Exec(ctx, r.q(`INSERT INTO teams (`+teamColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			t.ID(), t.OrganizationID(), t.Name(), t.MaxMembers(), next, t.CreatedAt().UTC(), t.UpdatedAt().UTC(),
		)
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
	} else {
		res, err := ex.Exec(ctx, r.q(`
			UPDATE teams SET name = ?, max_members = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?`),
			t.Name(), t.MaxMembers(), next, t.UpdatedAt().UTC(), t.ID(), t.Version(),
		)
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		} else if n == 0 {
			return fmt.Errorf("%s %s: %w", op, t.ID(), sharedDomain.ErrConcurrencyConflict)
		}
		if _, err := ex.Exec(ctx, r.q(`DELETE FROM team_members WHERE team_id = ?`), t.ID()); err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
	}

	for _, m := range t.Members() {
		_, err := ex.Exec(ctx, r.q(`INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`),
			t.ID(), m.UserID, string(m.Role), m.JoinedAt.UTC(),
		)
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
	}

	t.SetVersion(next)
	return nil
}

// FindByID loads a team with its roster.
func (r *TeamRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	st, err := scanTeam(r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+teamColumns+` FROM teams WHERE id = ?`), id))
	if err != nil {
		return nil, err
	}
	if st.Members, err = r.members(ctx, id); err != nil {
		return nil, err
	}
	return domain.RehydrateTeam(st), nil
}

// FindByOrganization loads every team of an organization, oldest first.
func (r *TeamRepository) FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.Team, error) {
	const op = "find teams by organization"
	rows, err := r.exec(ctx).Query(ctx, r.q(`
		SELECT `+teamColumns+` FROM teams
		WHERE organization_id = ?
		ORDER BY created_at, id`), organizationID)
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}

	var states []domain.TeamState
	for rows.Next() {
		st, err := scanTeam(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	_ = rows.Close()

	teams := make([]*domain.Team, 0, len(states))
	for _, st := range states {
		if st.Members, err = r.members(ctx, st.ID); err != nil {
			return nil, err
		}
		teams = append(teams, domain.RehydrateTeam(st))
	}
	return teams, nil
}

// Delete removes a team and its roster.
func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "delete team"
	ex := r.exec(ctx)
	if _, err := ex.Exec(ctx, r.q(`DELETE FROM team_members WHERE team_id = ?`), id); err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	res, err := ex.Exec(ctx, r.q(`DELETE FROM teams WHERE id = ?`), id)
	if err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (r *TeamRepository) members(ctx context.Context, teamID uuid.UUID) ([]domain.Member, error) {
	const op = "load team members"
	rows, err := r.exec(ctx).Query(ctx, r.q(`
		SELECT user_id, role, joined_at FROM team_members
		WHERE team_id = ?
		ORDER BY joined_at, user_id`), teamID)
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var (
			m        domain.Member
			role     string
			joinedAt database.Timestamp
		)
		if err := rows.Scan(&m.UserID, &role, &joinedAt); err != nil {
			return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
		m.Role = domain.Role(role)
		m.JoinedAt = joinedAt.Time
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	return out, nil
}

func scanTeam(row database.Row) (domain.TeamState, error) {
	var (
		st               domain.TeamState
		created, updated database.Timestamp
	)
	err := row.Scan(&st.ID, &st.OrganizationID, &st.Name, &st.MaxMembers, &st.Version, &created, &updated)
	if database.IsNoRows(err) {
		return st, domain.ErrTeamNotFound
	}
	if err != nil {
		return st, sharedDomain.Wrap(sharedDomain.KindPersistence, "scan team", err)
	}
	st.CreatedAt = created.Time
	st.UpdatedAt = updated.Time
	return st, nil
}

var _ domain.TeamRepository = (*TeamRepository)(nil)
