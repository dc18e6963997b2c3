package accounting

import (
	"fmt"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta returns the change a posting makes to the balance of an account
// with the given normal side.
//
// DEBIT-normal accounts grow with debits: delta = debit - credit.
// CREDIT-normal accounts grow with credits: delta = credit - debit.
func SignedDelta(side domain.NormalSide, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	switch side {
	case domain.Debit:
		return debit.Sub(credit), nil
	case domain.Credit:
		return credit.Sub(debit), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown normal side '%s'", apperrors.ErrValidation, side)
	}
}

// ValidateLine checks a single journal line: an account code, non-negative
// amounts at ledger scale, and exactly one side non-zero.
func ValidateLine(line domain.JournalEntryLine) error {
	if line.AccountCode == "" {
		return fmt.Errorf("%w: line %d: account code is required", apperrors.ErrValidation, line.LineNumber)
	}
	if err := domain.ValidateAmount("debit amount", line.DebitAmount); err != nil {
		return fmt.Errorf("%w: line %d: %v", apperrors.ErrValidation, line.LineNumber, err)
	}
	if err := domain.ValidateAmount("credit amount", line.CreditAmount); err != nil {
		return fmt.Errorf("%w: line %d: %v", apperrors.ErrValidation, line.LineNumber, err)
	}
	if line.DebitAmount.IsZero() == line.CreditAmount.IsZero() {
		return fmt.Errorf("%w: line %d: exactly one of debit or credit must be non-zero", apperrors.ErrValidation, line.LineNumber)
	}
	return nil
}

// ValidateJournalBalance checks the lines of an entry and returns its totals.
// An entry needs at least two lines and total debits must equal total credits
// exactly.
func ValidateJournalBalance(lines []domain.JournalEntryLine) (decimal.Decimal, decimal.Decimal, error) {
	if len(lines) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: journal entry must have at least two lines, got %d", apperrors.ErrEmptyEntry, len(lines))
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		totalDebit = totalDebit.Add(line.DebitAmount)
		totalCredit = totalCredit.Add(line.CreditAmount)
	}

	if !totalDebit.Equal(totalCredit) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: total debit %s does not equal total credit %s",
			apperrors.ErrUnbalancedEntry, domain.FormatAmount(totalDebit), domain.FormatAmount(totalCredit))
	}
	return totalDebit, totalCredit, nil
}

// TrialBalanceColumns places a balance in the debit or credit column of a
// trial balance according to the account's normal side. A negative balance
// moves to the opposite column.
func TrialBalanceColumns(side domain.NormalSide, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	if side == domain.Debit {
		if balance.IsNegative() {
			return debit, balance.Neg()
		}
		return balance, credit
	}
	if balance.IsNegative() {
		return balance.Neg(), credit
	}
	return debit, balance
}
