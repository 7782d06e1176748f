package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type counter struct {
	domain.BaseAggregateRoot
}

type counterBumped struct {
	domain.BaseEvent
}

func newCounter() *counter {
	return &counter{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
}

func (c *counter) bump() {
	c.Record(&counterBumped{BaseEvent: domain.NewBaseEvent(c.ID(), "Counter", "test.counter.bumped")})
}

func TestFlushEvents(t *testing.T) {
	t.Run("publishes events of all aggregates in order and clears them", func(t *testing.T) {
		a, b := newCounter(), newCounter()
		a.bump()
		b.bump()
		a.bump()
		pub := new(mockPublisher)

		var published []domain.DomainEvent
		pub.On("PublishAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			published = args.Get(1).([]domain.DomainEvent)
		}).Return(nil)

		err := FlushEvents(context.Background(), pub, a, b)

		require.NoError(t, err)
		require.Len(t, published, 3)
		assert.Equal(t, a.ID(), published[0].AggregateID())
		assert.Equal(t, a.ID(), published[1].AggregateID())
		assert.Equal(t, b.ID(), published[2].AggregateID())
		assert.Empty(t, a.PendingEvents())
		assert.Empty(t, b.PendingEvents())
	})

	t.Run("skips publisher when nothing is pending", func(t *testing.T) {
		pub := new(mockPublisher)

		err := FlushEvents(context.Background(), pub, newCounter())

		require.NoError(t, err)
		pub.AssertNotCalled(t, "PublishAll", mock.Anything, mock.Anything)
	})

	t.Run("stamps metadata from context", func(t *testing.T) {
		c := newCounter()
		c.bump()
		md := NewEventMetadata(uuid.New())
		ctx := WithEventMetadata(context.Background(), md)
		pub := new(mockPublisher)
		pub.On("PublishAll", ctx, mock.Anything).Return(nil)
		events := c.PendingEvents()

		require.NoError(t, FlushEvents(ctx, pub, c))
		assert.Equal(t, md, events[0].Metadata())
	})

	t.Run("returns handler failures from publisher", func(t *testing.T) {
		c := newCounter()
		c.bump()
		pub := new(mockPublisher)
		failure := errors.New("handler failed")
		pub.On("PublishAll", mock.Anything, mock.Anything).Return(failure)

		err := FlushEvents(context.Background(), pub, c)

		assert.ErrorIs(t, err, failure)
		assert.Empty(t, c.PendingEvents())
	})
}

func TestCausedBy(t *testing.T) {
	c := newCounter()
	c.bump()
	parent := c.PendingEvents()[0]
	root := NewEventMetadata(uuid.New())
	ApplyEventMetadata([]domain.DomainEvent{parent}, root)

	md := CausedBy(parent)

	assert.Equal(t, root.CorrelationID, md.CorrelationID)
	assert.Equal(t, parent.EventID(), md.CausationID)
	assert.Equal(t, root.UserID, md.UserID)
}

func TestCausedBy_WithoutParentCorrelation(t *testing.T) {
	c := newCounter()
	c.bump()
	parent := c.PendingEvents()[0]

	md := CausedBy(parent)

	assert.Equal(t, parent.EventID(), md.CorrelationID)
	assert.Equal(t, parent.EventID(), md.CausationID)
}
