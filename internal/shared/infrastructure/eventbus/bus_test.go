package eventbus_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoreRecorded struct {
	domain.BaseEvent
	Points int `json:"points"`
}

func newScoreRecorded(points int) *scoreRecorded {
	return &scoreRecorded{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Score", "test.score.recorded"),
		Points:    points,
	}
}

func newBus() *eventbus.Bus {
	return eventbus.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
}

type recordingConsumer struct {
	name   string
	types  []string
	err    error
	mu     sync.Mutex
	events []domain.DomainEvent
}

func (c *recordingConsumer) Name() string         { return c.name }
func (c *recordingConsumer) EventTypes() []string { return c.types }
func (c *recordingConsumer) Handle(_ context.Context, event domain.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := newBus()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		bus.Subscribe("test.score.recorded", name, func(context.Context, domain.DomainEvent) error {
			order = append(order, name)
			return nil
		})
	}

	err := bus.Publish(context.Background(), newScoreRecorded(5))

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_OnlyMatchingTypes(t *testing.T) {
	bus := newBus()
	matching := &recordingConsumer{name: "matching", types: []string{"test.score.recorded"}}
	other := &recordingConsumer{name: "other", types: []string{"test.score.reset"}}
	all := &recordingConsumer{name: "all", types: []string{eventbus.AllEvents}}
	bus.RegisterConsumer(matching)
	bus.RegisterConsumer(other)
	bus.RegisterConsumer(all)

	require.NoError(t, bus.Publish(context.Background(), newScoreRecorded(1)))

	assert.Len(t, matching.events, 1)
	assert.Empty(t, other.events)
	assert.Len(t, all.events, 1)
	assert.Equal(t, 2, bus.HandlerCount("test.score.recorded"))
}

func TestBus_NoHandlersIsNotAnError(t *testing.T) {
	assert.NoError(t, newBus().Publish(context.Background(), newScoreRecorded(1)))
}

func TestBus_HandlerIsolation(t *testing.T) {
	bus := newBus()
	boom := errors.New("boom")
	before := &recordingConsumer{name: "before", types: []string{"test.score.recorded"}}
	failing := &recordingConsumer{name: "failing", types: []string{"test.score.recorded"}, err: boom}
	after := &recordingConsumer{name: "after", types: []string{"test.score.recorded"}}
	bus.RegisterConsumer(before)
	bus.RegisterConsumer(failing)
	bus.Subscribe("test.score.recorded", "panicking", func(context.Context, domain.DomainEvent) error {
		panic("unexpected nil")
	})
	bus.RegisterConsumer(after)

	event := newScoreRecorded(3)
	err := bus.Publish(context.Background(), event)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, before.events, 1)
	assert.Len(t, after.events, 1)

	failures := eventbus.Failures(err)
	require.Len(t, failures, 2)
	assert.Equal(t, "failing", failures[0].Handler)
	assert.Equal(t, event.EventID(), failures[0].EventID)
	assert.Equal(t, "panicking", failures[1].Handler)
	assert.Contains(t, failures[1].Err.Error(), "unexpected nil")
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := newBus()
	c := &recordingConsumer{name: "c", types: []string{"test.score.recorded", "test.score.reset"}}
	unsubscribe := bus.RegisterConsumer(c)

	unsubscribe()
	unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), newScoreRecorded(1)))
	assert.Empty(t, c.events)
	assert.Zero(t, bus.HandlerCount("test.score.reset"))
}

func TestBus_NestedPublishFromHandler(t *testing.T) {
	bus := newBus()
	var seen []string
	bus.Subscribe("test.score.recorded", "escalator", func(ctx context.Context, e domain.DomainEvent) error {
		seen = append(seen, "recorded")
		return bus.Publish(ctx, &scoreRecorded{
			BaseEvent: domain.NewBaseEvent(e.AggregateID(), "Score", "test.score.reset"),
		})
	})
	bus.Subscribe("test.score.reset", "resetter", func(context.Context, domain.DomainEvent) error {
		seen = append(seen, "reset")
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), newScoreRecorded(1)))
	assert.Equal(t, []string{"recorded", "reset"}, seen)
}

func TestBus_PublishAllMergesFailures(t *testing.T) {
	bus := newBus()
	n := 0
	bus.Subscribe("test.score.recorded", "odd", func(context.Context, domain.DomainEvent) error {
		n++
		if n%2 == 1 {
			return errors.New("odd call")
		}
		return nil
	})

	err := bus.PublishAll(context.Background(), []domain.DomainEvent{
		newScoreRecorded(1), newScoreRecorded(2), newScoreRecorded(3),
	})

	assert.Equal(t, 3, n)
	assert.Len(t, eventbus.Failures(err), 2)
}

type capturePublisher struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, key string, payload []byte) error {
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func TestMirror_ForwardsEnvelope(t *testing.T) {
	bus := newBus()
	pub := &capturePublisher{}
	bus.RegisterConsumer(eventbus.NewMirror(pub, nil))

	event := newScoreRecorded(42)
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Equal(t, []string{"test.score.recorded"}, pub.keys)
	var env eventbus.Envelope
	require.NoError(t, json.Unmarshal(pub.payloads[0], &env))
	assert.Equal(t, event.EventID(), env.EventID)
	assert.Equal(t, "Score", env.AggregateType)
	assert.JSONEq(t, `{"points":42}`, string(env.Payload))
}

func TestMirror_FailureIsReported(t *testing.T) {
	bus := newBus()
	brokerDown := errors.New("broker down")
	bus.RegisterConsumer(eventbus.NewMirror(&capturePublisher{err: brokerDown}, nil))

	err := bus.Publish(context.Background(), newScoreRecorded(1))

	assert.ErrorIs(t, err, brokerDown)
}

func TestMirror_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	bus := newBus()
	bus.RegisterConsumer(eventbus.NewMirror(&capturePublisher{err: errors.New("broker down")}, logger))
	event := newScoreRecorded(1)

	_ = bus.Publish(context.Background(), event)

	out := buf.String()
	assert.Contains(t, out, "event mirror failed")
	assert.Contains(t, out, "event_type=test.score.recorded")
	assert.Contains(t, out, event.EventID().String())
	assert.Contains(t, out, "broker down")
}

func TestMirror_SuccessIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	bus := newBus()
	bus.RegisterConsumer(eventbus.NewMirror(&capturePublisher{}, slog.New(slog.NewTextHandler(&buf, nil))))

	require.NoError(t, bus.Publish(context.Background(), newScoreRecorded(1)))
	assert.Empty(t, buf.String())
}
