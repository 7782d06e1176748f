package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/arena/internal/notifications/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// AMQPSender hands notifications to a delivery service over the message
// broker. Routing key: notifications.{kind}.
type AMQPSender struct {
	publisher eventbus.Publisher
}

// NewAMQPSender creates a sender on top of a broker publisher.
func NewAMQPSender(publisher eventbus.Publisher) *AMQPSender {
	return &AMQPSender{publisher: publisher}
}

type amqpMessage struct {
	UserID       uuid.UUID           `json:"user_id"`
	Notification domain.Notification `json:"notification"`
}

func (s *AMQPSender) Send(ctx context.Context, userID uuid.UUID, n domain.Notification) error {
	body, err := json.Marshal(amqpMessage{UserID: userID, Notification: n})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return s.publisher.Publish(ctx, "notifications."+string(n.Kind), body)
}
