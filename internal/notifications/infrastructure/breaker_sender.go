package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/arena/internal/notifications/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ErrDeliveryUnavailable is returned while the breaker is open.
var ErrDeliveryUnavailable = errors.New("notification delivery unavailable")

// BreakerConfig tunes the circuit breaker around a Sender.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
}

// DefaultBreakerConfig trips after five consecutive failures and probes
// again after thirty seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerSender stops calling a failing Sender until it recovers.
type BreakerSender struct {
	next    domain.Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerSender wraps next with a circuit breaker.
func NewBreakerSender(next domain.Sender, cfg BreakerConfig, logger *slog.Logger) *BreakerSender {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notification circuit breaker state changed",
				"sender", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &BreakerSender{next: next, breaker: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (s *BreakerSender) Send(ctx context.Context, userID uuid.UUID, n domain.Notification) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Send(ctx, userID, n)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrDeliveryUnavailable, s.breaker.Name())
	}
	return err
}

// State reports the breaker state.
func (s *BreakerSender) State() gobreaker.State { return s.breaker.State() }
