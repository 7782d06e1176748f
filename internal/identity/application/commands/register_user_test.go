package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/arena/internal/identity/domain"
	"github.com/felixgeelhaar/arena/internal/identity/infrastructure/persistence"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
)

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.SQLite(t)
	bus := eventbus.New(nil)
	var registered []string
	bus.Subscribe(domain.EventUserRegistered, "test", func(_ context.Context, e sharedDomain.DomainEvent) error {
		registered = append(registered, e.(*domain.UserRegistered).Email)
		return nil
	})
	h := NewRegisterUserHandler(persistence.NewUserRepository(conn), database.NewUnitOfWork(conn), bus)

	res, err := h.Handle(ctx, RegisterUserCommand{Email: "Rep@Example.com", Name: "Rep"})
	require.NoError(t, err)
	assert.Equal(t, "rep@example.com", res.Value.Email().String())
	assert.Equal(t, []string{"rep@example.com"}, registered)

	_, err = h.Handle(ctx, RegisterUserCommand{Email: "rep@example.com", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	assert.Len(t, registered, 1)

	_, err = h.Handle(ctx, RegisterUserCommand{Email: "nope", Name: "Rep"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}
