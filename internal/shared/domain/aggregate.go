package domain

import "github.com/google/uuid"

// AggregateRoot is the consistency boundary for a cluster of entities.
// Mutating methods record pending events which are flushed to the event
// bus only after the aggregate has been persisted.
type AggregateRoot interface {
	Entity
	PendingEvents() []DomainEvent
	ClearPendingEvents()
	Version() int
}

// BaseAggregateRoot buffers pending events and tracks the persisted version
// used for optimistic concurrency.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
	version int
}

// NewBaseAggregateRoot creates an unsaved aggregate root.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// NewBaseAggregateRootWithID creates an unsaved aggregate root with a known id.
func NewBaseAggregateRootWithID(id uuid.UUID) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityWithID(id)}
}

// RehydrateBaseAggregateRoot restores an aggregate root loaded from storage.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// PendingEvents returns events recorded since the last flush.
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// ClearPendingEvents drops all recorded events.
func (a *BaseAggregateRoot) ClearPendingEvents() {
	a.pending = nil
}

// Record appends an event to the pending buffer and touches the entity.
func (a *BaseAggregateRoot) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
	a.Touch()
}

// Version is the version the aggregate was loaded or last saved with.
func (a *BaseAggregateRoot) Version() int {
	return a.version
}

// SetVersion is called by repositories after a successful save.
func (a *BaseAggregateRoot) SetVersion(version int) {
	a.version = version
}
