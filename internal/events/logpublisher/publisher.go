// Package logpublisher writes ledger events to the structured log. It is
// used when no message broker is configured.
package logpublisher

import (
	"context"
	"log/slog"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/middleware"
)

type Publisher struct {
	logger *slog.Logger
}

var _ portssvc.EventPublisher = (*Publisher)(nil)

func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		logger = p.logger
	}
	logger.InfoContext(ctx, "Ledger event",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)),
		slog.String("tenant_id", event.TenantID),
		slog.String("entry_number", event.EntryNumber),
		slog.String("reversal_of", event.ReversalOf),
		slog.String("total", domain.FormatAmount(event.TotalAmount)),
		slog.String("actor_id", event.ActorID))
	return nil
}

func (p *Publisher) Close() error { return nil }
