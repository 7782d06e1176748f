package domain

import sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"

var (
	ErrUnknownPlan            = sharedDomain.NewKindError(sharedDomain.KindValidation, "unknown plan")
	ErrUnknownStatus          = sharedDomain.NewKindError(sharedDomain.KindValidation, "unknown subscription status")
	ErrInvalidTransition      = sharedDomain.NewKindError(sharedDomain.KindValidation, "invalid subscription status transition")
	ErrSubscriptionCanceled   = sharedDomain.NewKindError(sharedDomain.KindValidation, "subscription is canceled")
	ErrSubscriptionNotFound   = sharedDomain.NewKindError(sharedDomain.KindNotFound, "subscription not found")
	ErrOpenSubscriptionExists = sharedDomain.NewKindError(sharedDomain.KindValidation, "organization already has an open subscription")
	ErrNoCancellationPending  = sharedDomain.NewKindError(sharedDomain.KindValidation, "no cancellation is scheduled")
)
