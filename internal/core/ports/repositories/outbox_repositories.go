package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// OutboxWriter records domain events in the same transaction as the state
// change that produced them.
type OutboxWriter interface {
	Enqueue(ctx context.Context, events ...domain.DomainEvent) error
}
