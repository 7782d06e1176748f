package app

import (
	"fmt"

	billingPersistence "github.com/felixgeelhaar/arena/internal/billing/infrastructure/persistence"
	identityPersistence "github.com/felixgeelhaar/arena/internal/identity/infrastructure/persistence"
	organizationPersistence "github.com/felixgeelhaar/arena/internal/organizations/infrastructure/persistence"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	teamPersistence "github.com/felixgeelhaar/arena/internal/teams/infrastructure/persistence"
)

// Repositories groups the aggregate repositories over one connection. The
// repositories rebind their queries per driver, so one set serves both
// PostgreSQL and SQLite.
type Repositories struct {
	Users         *identityPersistence.UserRepository
	Organizations *organizationPersistence.OrganizationRepository
	Teams         *teamPersistence.TeamRepository
	Subscriptions *billingPersistence.SubscriptionRepository

	conn database.Connection
}

// NewRepositories creates the repositories for conn.
func NewRepositories(conn database.Connection) (*Repositories, error) {
	if !conn.Driver().IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver())
	}
	return &Repositories{
		Users:         identityPersistence.NewUserRepository(conn),
		Organizations: organizationPersistence.NewOrganizationRepository(conn),
		Teams:         teamPersistence.NewTeamRepository(conn),
		Subscriptions: billingPersistence.NewSubscriptionRepository(conn),
		conn:          conn,
	}, nil
}

// Driver returns the database driver in use.
func (r *Repositories) Driver() database.Driver {
	return r.conn.Driver()
}

// Connection returns the underlying connection.
func (r *Repositories) Connection() database.Connection {
	return r.conn
}
