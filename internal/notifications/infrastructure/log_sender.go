package infrastructure

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/arena/internal/notifications/domain"
	"github.com/google/uuid"
)

// LogSender writes notifications to the log. Used in local mode.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, userID uuid.UUID, n domain.Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"user_id", userID,
		"kind", n.Kind,
		"organization_id", n.OrganizationID,
		"title", n.Title,
	)
	return nil
}
