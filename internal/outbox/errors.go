package outbox

import "errors"

var (
	ErrEventRequired          = errors.New("outbox event is required")
	ErrRepositoryRequired     = errors.New("outbox repository is required")
	ErrPublisherRequired      = errors.New("outbox publisher is required")
	ErrDispatcherRunning      = errors.New("outbox dispatcher is already running")
	ErrEventTypeRequired      = errors.New("event type is required")
	ErrAggregateIDRequired    = errors.New("aggregate id is required")
	ErrEventPayloadRequired   = errors.New("outbox event payload is required")
	ErrEventPayloadTooLarge   = errors.New("outbox event payload exceeds maximum allowed size")
	ErrEventPayloadNotJSON    = errors.New("outbox event payload must be valid JSON")
	ErrEventNotFound          = errors.New("outbox event not found")
	ErrStatusInvalid          = errors.New("invalid outbox status")
	ErrTransitionInvalid      = errors.New("invalid outbox status transition")
	ErrLimitMustBePositive    = errors.New("limit must be greater than zero")
	ErrNonRetryablePublishErr = errors.New("event cannot be published")
)
