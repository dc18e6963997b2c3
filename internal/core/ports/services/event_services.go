package services

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// EventPublisher delivers ledger events to downstream consumers. Publishing
// happens after commit; a failure never undoes the ledger change.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
	Close() error
}
