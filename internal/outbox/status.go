package outbox

import "fmt"

// EventStatus is a step of the outbox event lifecycle.
type EventStatus string

const (
	StatusPending    EventStatus = StatusPendingRaw
	StatusProcessing EventStatus = StatusProcessingRaw
	StatusPublished  EventStatus = StatusPublishedRaw
	StatusFailed     EventStatus = StatusFailedRaw
	StatusInvalid    EventStatus = StatusInvalidRaw
)

// ParseEventStatus validates and converts a raw string status.
func ParseEventStatus(raw string) (EventStatus, error) {
	status := EventStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrStatusInvalid, raw)
	}
	return status, nil
}

func (status EventStatus) IsValid() bool {
	switch status {
	case StatusPending, StatusProcessing, StatusPublished, StatusFailed, StatusInvalid:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a transition from status to next is allowed.
// Published and Invalid are terminal.
func (status EventStatus) CanTransitionTo(next EventStatus) bool {
	switch status {
	case StatusPending, StatusFailed:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessing || next == StatusPublished || next == StatusFailed || next == StatusInvalid
	default:
		return false
	}
}

// ValidateTransition validates a raw status transition.
func ValidateTransition(fromRaw, toRaw string) error {
	from, err := ParseEventStatus(fromRaw)
	if err != nil {
		return fmt.Errorf("from status: %w", err)
	}
	to, err := ParseEventStatus(toRaw)
	if err != nil {
		return fmt.Errorf("to status: %w", err)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionInvalid, from, to)
	}
	return nil
}

func (status EventStatus) String() string {
	return string(status)
}
