package commands

import (
	"context"

	"github.com/felixgeelhaar/arena/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
)

// RegisterUserCommand signs a user up.
type RegisterUserCommand struct {
	Email string
	Name  string
}

// RegisterUserHandler handles RegisterUserCommand.
type RegisterUserHandler struct {
	repo      domain.UserRepository
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
}

// NewRegisterUserHandler creates a RegisterUserHandler.
func NewRegisterUserHandler(repo domain.UserRepository, uow sharedApplication.UnitOfWork, publisher sharedApplication.EventPublisher) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo, uow: uow, publisher: publisher}
}

// Handle validates and stores the user.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (sharedApplication.CommandResult[*domain.User], error) {
	var result sharedApplication.CommandResult[*domain.User]

	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return result, err
	}
	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return result, err
	}

	user := domain.NewUser(email, name)
	if err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.repo.Save(txCtx, user)
	}); err != nil {
		return result, err
	}

	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.NewEventMetadata(user.ID()))
	result.Value = user
	result.Propagation = sharedApplication.FlushEvents(ctx, h.publisher, user)
	return result, nil
}
