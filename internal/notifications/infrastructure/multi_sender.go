package infrastructure

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/arena/internal/notifications/domain"
	"github.com/google/uuid"
)

// MultiSender delivers through every sender and joins their errors.
type MultiSender []domain.Sender

func (m MultiSender) Send(ctx context.Context, userID uuid.UUID, n domain.Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
