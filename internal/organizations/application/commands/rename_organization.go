package commands

import (
	"context"

	"github.com/felixgeelhaar/arena/internal/organizations/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/google/uuid"
)

// RenameOrganizationCommand changes an organization's display name.
type RenameOrganizationCommand struct {
	OrganizationID uuid.UUID
	Name           string
	ActorID        uuid.UUID
}

// RenameOrganizationHandler handles RenameOrganizationCommand.
type RenameOrganizationHandler struct {
	orgs      domain.OrganizationRepository
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
}

func NewRenameOrganizationHandler(orgs domain.OrganizationRepository, uow sharedApplication.UnitOfWork, publisher sharedApplication.EventPublisher) *RenameOrganizationHandler {
	return &RenameOrganizationHandler{orgs: orgs, uow: uow, publisher: publisher}
}

func (h *RenameOrganizationHandler) Handle(ctx context.Context, cmd RenameOrganizationCommand) (sharedApplication.CommandResult[*domain.Organization], error) {
	var result sharedApplication.CommandResult[*domain.Organization]

	var org *domain.Organization
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		if org, err = h.orgs.FindByID(txCtx, cmd.OrganizationID); err != nil {
			return err
		}
		if err := org.Rename(cmd.Name); err != nil {
			return err
		}
		if len(org.PendingEvents()) == 0 {
			return nil
		}
		return h.orgs.Save(txCtx, org)
	})
	if err != nil {
		return result, err
	}

	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.NewEventMetadata(cmd.ActorID))
	result.Value = org
	result.Propagation = sharedApplication.FlushEvents(ctx, h.publisher, org)
	return result, nil
}
