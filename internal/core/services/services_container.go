package services

import (
	"time"

	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
)

type containerConfig struct {
	publisher portssvc.EventPublisher
	clock     func() time.Time
	pageSize  int
}

// ContainerOption configures NewServiceContainer.
type ContainerOption func(*containerConfig)

// WithPublisher sends posting and reversal events to p.
func WithPublisher(p portssvc.EventPublisher) ContainerOption {
	return func(c *containerConfig) { c.publisher = p }
}

// WithClock sets the time source shared by every service.
func WithClock(clock func() time.Time) ContainerOption {
	return func(c *containerConfig) { c.clock = clock }
}

// WithPageSize sets the default page size for journal listings.
func WithPageSize(size int) ContainerOption {
	return func(c *containerConfig) { c.pageSize = size }
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, options ...ContainerOption) *portssvc.ServiceContainer {
	cfg := &containerConfig{}
	for _, option := range options {
		option(cfg)
	}

	container := &portssvc.ServiceContainer{}

	accountOpts := []AccountServiceOption{}
	ledgerOpts := []BalanceLedgerOption{}
	journalOpts := []JournalServiceOption{WithDefaultPageSize(cfg.pageSize)}
	if cfg.clock != nil {
		accountOpts = append(accountOpts, WithAccountClock(cfg.clock))
		ledgerOpts = append(ledgerOpts, WithLedgerClock(cfg.clock))
		journalOpts = append(journalOpts, WithJournalClock(cfg.clock))
	}
	if cfg.publisher != nil {
		journalOpts = append(journalOpts, WithEventPublisher(cfg.publisher))
	}

	container.Account = NewAccountService(repos.AccountRepo, accountOpts...)
	container.Ledger = NewBalanceLedger(ledgerOpts...)
	container.Journal = NewJournalService(repos, container.Ledger, journalOpts...)
	container.Reporting = NewReportingService(container.Account, repos.JournalRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.BalanceLedgerSvc = (*balanceLedger)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.ReportingService = (*reportingService)(nil)
)
