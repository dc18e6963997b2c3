package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/SscSPs/general_ledger/internal/utils/pagination"
	"github.com/SscSPs/general_ledger/internal/utils/validation"
	"github.com/google/uuid"
)

const (
	// DefaultVoucherType prefixes entry numbers when no voucher type is given.
	DefaultVoucherType = "JE"
	// ReversalVoucherType prefixes the entry numbers of compensating entries.
	ReversalVoucherType = "RV"

	defaultPageSize = 20
	maxPageSize     = 100
)

type journalService struct {
	BaseService
	journalRepo     portsrepo.JournalRepositoryFacade
	sequences       portsrepo.SequenceRepository
	txManager       portsrepo.TransactionManager
	ledger          portssvc.BalanceLedgerSvc
	publisher       portssvc.EventPublisher
	defaultPageSize int
}

// JournalServiceOption configures the journal service.
type JournalServiceOption func(*journalService)

// WithEventPublisher sets where posting and reversal events are sent.
func WithEventPublisher(p portssvc.EventPublisher) JournalServiceOption {
	return func(s *journalService) {
		s.publisher = p
	}
}

// WithJournalClock overrides the time source used for posting timestamps.
func WithJournalClock(clock func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.clock = clock
	}
}

// WithDefaultPageSize sets the page size used when a listing does not ask for one.
func WithDefaultPageSize(size int) JournalServiceOption {
	return func(s *journalService) {
		if size > 0 {
			s.defaultPageSize = size
		}
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(repos portsrepo.RepositoryProvider, ledger portssvc.BalanceLedgerSvc, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	s := &journalService{
		journalRepo:     repos.JournalRepo,
		sequences:       repos.SequenceRepo,
		txManager:       repos.TxManager,
		ledger:          ledger,
		defaultPageSize: defaultPageSize,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines validates a request and turns its lines into numbered entry lines.
func buildLines(req dto.CreateJournalEntryRequest) ([]domain.JournalEntryLine, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	lines := make([]domain.JournalEntryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalEntryLine{
			LineNumber:         i + 1,
			AccountCode:        l.AccountCode,
			DebitAmount:        l.DebitAmount,
			CreditAmount:       l.CreditAmount,
			Description:        l.Description,
			CostCenter:         l.CostCenter,
			ProjectCode:        l.ProjectCode,
			RelatedReferenceID: l.RelatedReferenceID,
		}
	}
	return lines, nil
}

func voucherPrefix(voucherType string) string {
	prefix := strings.ToUpper(strings.TrimSpace(voucherType))
	if prefix == "" {
		return DefaultVoucherType
	}
	return prefix
}

func (s *journalService) nextEntryNumber(ctx context.Context, tenantID, prefix string) (string, error) {
	seq, err := s.sequences.NextValue(ctx, tenantID, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to allocate entry number: %w", err)
	}
	return fmt.Sprintf("%s-%06d", prefix, seq), nil
}

func (s *journalService) CreateDraft(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", apperrors.ErrValidation)
	}
	lines, err := buildLines(req)
	if err != nil {
		return nil, err
	}
	totalDebit, totalCredit, err := accounting.ValidateJournalBalance(lines)
	if err != nil {
		s.LogDebug(ctx, "Rejected journal draft", slog.String("tenant_id", tenantID), slog.String("error", err.Error()))
		return nil, err
	}

	prefix := voucherPrefix(req.VoucherType)
	entryNumber, err := s.nextEntryNumber(ctx, tenantID, prefix)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate entry number", slog.String("tenant_id", tenantID))
		return nil, err
	}

	now := s.Now()
	entryDate := req.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}
	entry := domain.JournalEntry{
		EntryID:         uuid.NewString(),
		TenantID:        tenantID,
		EntryNumber:     entryNumber,
		EntryDate:       entryDate,
		VoucherType:     prefix,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		Status:          domain.Draft,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		Lines:           lines,
		AuditFields:     domain.NewAuditFields(userID, now),
	}

	if err := s.journalRepo.SaveJournalEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save journal draft",
			slog.String("tenant_id", tenantID),
			slog.String("entry_number", entryNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Journal draft created",
		slog.String("tenant_id", tenantID),
		slog.String("entry_number", entryNumber))
	return &entry, nil
}

func (s *journalService) UpdateDraft(ctx context.Context, tenantID string, entryNumber string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	lines, err := buildLines(req)
	if err != nil {
		return nil, err
	}
	totalDebit, totalCredit, err := accounting.ValidateJournalBalance(lines)
	if err != nil {
		return nil, err
	}

	var updated *domain.JournalEntry
	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		entry, err := s.lockEntry(ctx, tx, tenantID, entryNumber)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s, only drafts can be edited", apperrors.ErrInvalidStateTransition, entryNumber, entry.Status)
		}

		if !req.EntryDate.IsZero() {
			entry.EntryDate = req.EntryDate
		}
		entry.Description = req.Description
		entry.ReferenceNumber = req.ReferenceNumber
		entry.Lines = lines
		entry.TotalDebit = totalDebit
		entry.TotalCredit = totalCredit
		entry.Touch(userID, s.Now())

		if err := tx.UpdateJournalEntry(ctx, *entry); err != nil {
			return fmt.Errorf("failed to update draft %s: %w", entryNumber, err)
		}
		updated = entry
		return nil
	})
	if err != nil {
		s.logTxError(ctx, err, "Failed to update journal draft", tenantID, entryNumber)
		return nil, err
	}

	s.LogInfo(ctx, "Journal draft updated",
		slog.String("tenant_id", tenantID),
		slog.String("entry_number", entryNumber))
	return updated, nil
}

func (s *journalService) DiscardDraft(ctx context.Context, tenantID string, entryNumber string, userID string) error {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		entry, err := s.lockEntry(ctx, tx, tenantID, entryNumber)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s, only drafts can be discarded", apperrors.ErrInvalidStateTransition, entryNumber, entry.Status)
		}
		return tx.DeleteJournalEntry(ctx, tenantID, entryNumber)
	})
	if err != nil {
		s.logTxError(ctx, err, "Failed to discard journal draft", tenantID, entryNumber)
		return err
	}

	s.LogInfo(ctx, "Journal draft discarded",
		slog.String("tenant_id", tenantID),
		slog.String("entry_number", entryNumber),
		slog.String("user_id", userID))
	return nil
}

func (s *journalService) PostEntry(ctx context.Context, tenantID string, entryNumber string, userID string) (*domain.JournalEntry, error) {
	var posted *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		entry, err := s.lockEntry(ctx, tx, tenantID, entryNumber)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s, expected DRAFT", apperrors.ErrInvalidStateTransition, entryNumber, entry.Status)
		}
		if err := s.postLocked(ctx, tx, entry, userID); err != nil {
			return err
		}
		if err := tx.UpdateJournalEntry(ctx, *entry); err != nil {
			return fmt.Errorf("failed to mark entry %s posted: %w", entryNumber, err)
		}
		posted = entry
		return nil
	})
	if err != nil {
		s.logTxError(ctx, err, "Failed to post journal entry", tenantID, entryNumber)
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("tenant_id", tenantID),
		slog.String("entry_number", entryNumber),
		slog.String("total", domain.FormatAmount(posted.TotalDebit)))
	s.publish(ctx, domain.EventJournalEntryPosted, posted, userID)
	return posted, nil
}

func (s *journalService) ReverseEntry(ctx context.Context, tenantID string, entryNumber string, userID string) (*domain.JournalEntry, *domain.JournalEntry, error) {
	// The number is taken outside the ledger transaction; an aborted
	// reversal leaves a gap in the RV sequence.
	reversalNumber, err := s.nextEntryNumber(ctx, tenantID, ReversalVoucherType)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate reversal number", slog.String("tenant_id", tenantID))
		return nil, nil, err
	}

	var original, reversal *domain.JournalEntry
	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		source, err := s.lockEntry(ctx, tx, tenantID, entryNumber)
		if err != nil {
			return err
		}
		switch {
		case source.Status == domain.Reversed || source.ReversedBy != "":
			return fmt.Errorf("%w: entry %s was reversed by %s", apperrors.ErrAlreadyReversed, entryNumber, source.ReversedBy)
		case source.Status != domain.Posted:
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrNotPosted, entryNumber, source.Status)
		}

		now := s.Now()
		lines := make([]domain.JournalEntryLine, len(source.Lines))
		for i, l := range source.Lines {
			swapped := l.Swapped()
			swapped.LineNumber = i + 1
			lines[i] = swapped
		}
		comp := &domain.JournalEntry{
			EntryID:         uuid.NewString(),
			TenantID:        tenantID,
			EntryNumber:     reversalNumber,
			EntryDate:       now,
			VoucherType:     ReversalVoucherType,
			Description:     fmt.Sprintf("Reversal of %s", source.EntryNumber),
			ReferenceNumber: source.EntryNumber,
			Status:          domain.Draft,
			ReversalOf:      source.EntryNumber,
			Lines:           lines,
			AuditFields:     domain.NewAuditFields(userID, now),
		}
		if err := s.postLocked(ctx, tx, comp, userID); err != nil {
			return err
		}
		if err := tx.SaveJournalEntry(ctx, *comp); err != nil {
			return fmt.Errorf("failed to save reversal %s: %w", reversalNumber, err)
		}

		source.Status = domain.Reversed
		source.ReversedBy = comp.EntryNumber
		source.Touch(userID, now)
		if err := tx.UpdateJournalEntry(ctx, *source); err != nil {
			return fmt.Errorf("failed to mark entry %s reversed: %w", entryNumber, err)
		}
		original, reversal = source, comp
		return nil
	})
	if err != nil {
		s.logTxError(ctx, err, "Failed to reverse journal entry", tenantID, entryNumber)
		return nil, nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("tenant_id", tenantID),
		slog.String("entry_number", entryNumber),
		slog.String("reversal_number", reversal.EntryNumber))
	s.publish(ctx, domain.EventJournalEntryReversed, reversal, userID)
	return original, reversal, nil
}

// postLocked applies every line of entry to account balances and marks it
// POSTED. The caller holds the entry lock (or owns a new entry) and must
// persist the entry afterwards in the same transaction.
func (s *journalService) postLocked(ctx context.Context, tx portsrepo.LedgerTx, entry *domain.JournalEntry, userID string) error {
	totalDebit, totalCredit, err := accounting.ValidateJournalBalance(entry.Lines)
	if err != nil {
		return err
	}

	accounts, err := s.ledger.LockAccounts(ctx, tx, entry.TenantID, entry.AccountCodes())
	if err != nil {
		return err
	}

	sort.SliceStable(entry.Lines, func(i, j int) bool { return entry.Lines[i].LineNumber < entry.Lines[j].LineNumber })
	for i := range entry.Lines {
		line := &entry.Lines[i]
		account := accounts[line.AccountCode]
		if _, err := s.ledger.ApplyPosting(ctx, tx, account, line.DebitAmount, line.CreditAmount, userID); err != nil {
			return fmt.Errorf("line %d: %w", line.LineNumber, err)
		}
		line.AccountName = account.Name
	}

	now := s.Now()
	entry.Status = domain.Posted
	entry.TotalDebit = totalDebit
	entry.TotalCredit = totalCredit
	entry.PostedBy = userID
	entry.PostedAt = &now
	entry.Touch(userID, now)
	return nil
}

func (s *journalService) lockEntry(ctx context.Context, tx portsrepo.LedgerTx, tenantID, entryNumber string) (*domain.JournalEntry, error) {
	entry, err := tx.LockJournalEntry(ctx, tenantID, entryNumber)
	if err != nil {
		return nil, err
	}
	if entry.TenantID != tenantID {
		return nil, fmt.Errorf("%w: entry %s", apperrors.ErrCrossTenantAccess, entryNumber)
	}
	return entry, nil
}

// logTxError logs failures that are not plain business rejections at error level.
func (s *journalService) logTxError(ctx context.Context, err error, msg, tenantID, entryNumber string) {
	attrs := []any{slog.String("tenant_id", tenantID), slog.String("entry_number", entryNumber)}
	if apperrors.HTTPStatus(err) >= 500 {
		s.LogError(ctx, err, msg, attrs...)
		return
	}
	s.LogInfo(ctx, msg, append(attrs, slog.String("reason", err.Error()))...)
}

func (s *journalService) publish(ctx context.Context, eventType domain.LedgerEventType, entry *domain.JournalEntry, userID string) {
	if s.publisher == nil {
		return
	}
	event := domain.LedgerEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		TenantID:    entry.TenantID,
		EntryNumber: entry.EntryNumber,
		ReversalOf:  entry.ReversalOf,
		TotalAmount: entry.TotalDebit,
		ActorID:     userID,
		OccurredAt:  s.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger event",
			slog.String("event_type", string(eventType)),
			slog.String("entry_number", entry.EntryNumber))
	}
}

func (s *journalService) GetEntry(ctx context.Context, tenantID string, entryNumber string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByNumber(ctx, tenantID, entryNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get journal entry",
				slog.String("tenant_id", tenantID),
				slog.String("entry_number", entryNumber))
		}
		return nil, err
	}
	if entry.TenantID != tenantID {
		return nil, fmt.Errorf("%w: entry %s", apperrors.ErrCrossTenantAccess, entryNumber)
	}
	return entry, nil
}

func (s *journalService) GetEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.TenantID != tenantID {
		s.LogWarn(ctx, "Journal entry requested from another tenant",
			slog.String("tenant_id", tenantID),
			slog.String("entry_id", entryID))
		return nil, fmt.Errorf("%w: entry %s", apperrors.ErrCrossTenantAccess, entryID)
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, tenantID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	if err := validation.ValidateStruct(params); err != nil {
		return nil, err
	}
	var status *domain.JournalStatus
	if params.Status != "" {
		st := domain.JournalStatus(params.Status)
		status = &st
	}
	var token *string
	if params.NextToken != "" {
		token = &params.NextToken
	}
	limit := pagination.ClampLimit(params.Limit, s.defaultPageSize, maxPageSize)

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, tenantID, status, limit, token)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("tenant_id", tenantID))
		return nil, err
	}

	return &dto.ListJournalEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}
