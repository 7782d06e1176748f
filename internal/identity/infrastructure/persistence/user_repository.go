// Package persistence stores users in SQLite or PostgreSQL.
package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/arena/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const userColumns = `id, email, name, version, created_at, updated_at`

// UserRepository implements domain.UserRepository.
type UserRepository struct {
	conn database.Connection
}

// NewUserRepository creates a repository on conn.
func NewUserRepository(conn database.Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

func (r *UserRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *UserRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates u.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	const op = "save user"
	next := u.Version() + 1

	if u.Version() == 0 {
		_, err := r.exec(ctx).Exec(ctx, r.q(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
			u.ID(), u.Email().String(), u.Name().String(), next, u.CreatedAt().UTC(), u.UpdatedAt().UTC())
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, domain.ErrEmailAlreadyExists)
		}
		if err != nil {
			return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
		}
		u.SetVersion(next)
		return nil
	}

	res, err := r.exec(ctx).Exec(ctx, r.q(`
		UPDATE users SET name = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`),
		u.Name().String(), next, u.UpdatedAt().UTC(), u.ID(), u.Version())
	if err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", op, u.ID(), sharedDomain.ErrConcurrencyConflict)
	}
	u.SetVersion(next)
	return nil
}

// FindByID loads a user.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return scanUser(r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
}

// FindByEmail loads a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	return scanUser(r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+userColumns+` FROM users WHERE email = ?`), email.String()))
}

// FindByIDs loads every existing user among ids.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	out := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	rows, err := r.exec(ctx).Query(ctx, r.q(`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`), args...)
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "find users", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID()] = u
	}
	if err := rows.Err(); err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "find users", err)
	}
	return out, nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.exec(ctx).Exec(ctx, r.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return sharedDomain.Wrap(sharedDomain.KindPersistence, "delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row database.Row) (*domain.User, error) {
	var (
		id               uuid.UUID
		email, name      string
		version          int
		created, updated database.Timestamp
	)
	err := row.Scan(&id, &email, &name, &version, &created, &updated)
	if database.IsNoRows(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "scan user", err)
	}

	e, err := domain.NewEmail(email)
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "scan user", err)
	}
	n, err := domain.NewName(name)
	if err != nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindPersistence, "scan user", err)
	}
	return domain.RehydrateUser(id, e, n, version, created.Time, updated.Time), nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
