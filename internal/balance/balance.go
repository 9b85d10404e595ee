// Package balance computes the three top-level balances of a budget and the
// changes that mutations apply to them.
//
// The functions in this package have no side effects.
package balance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/models"
)

// Epsilon is the tolerance for comparing balances.
var Epsilon = decimal.New(1, -2)

// NegativeUnassignedWarning is the unassigned cash below which Validate warns.
var NegativeUnassignedWarning = decimal.NewFromInt(-1000)

var ErrUnknownPaycheckMode = errors.New("unknown paycheck mode")

// Balances is a snapshot of the budget's balances.
//
// The virtual balance is the money in envelopes and savings goals. Unassigned
// cash is the money in the bank that is not budgeted.
// ActualBalance == VirtualBalance + UnassignedCash holds for consistent data.
type Balances struct {
	ActualBalance         decimal.Decimal `json:"actualBalance" example:"1500"`
	VirtualBalance        decimal.Decimal `json:"virtualBalance" example:"200"`
	UnassignedCash        decimal.Decimal `json:"unassignedCash" example:"1300"`
	TotalEnvelopeBalance  decimal.Decimal `json:"totalEnvelopeBalance" example:"150"`
	TotalSavingsBalance   decimal.Decimal `json:"totalSavingsBalance" example:"50"`
	IsActualBalanceManual bool            `json:"isActualBalanceManual" example:"false"`
}

// Calculate derives all balances from the raw collections.
//
// If manualActualBalance is not nil, it is used as actual balance. Otherwise,
// the actual balance is the sum of all transactions that are not transfers.
func Calculate(envelopes []models.Envelope, transactions []models.Transaction, goals []models.SavingsGoal, manualActualBalance *decimal.Decimal) Balances {
	var b Balances

	for _, e := range envelopes {
		b.TotalEnvelopeBalance = b.TotalEnvelopeBalance.Add(e.CurrentBalance)
	}

	for _, g := range goals {
		b.TotalSavingsBalance = b.TotalSavingsBalance.Add(g.CurrentAmount)
	}

	if manualActualBalance != nil {
		b.ActualBalance = *manualActualBalance
		b.IsActualBalanceManual = true
	} else {
		for _, t := range transactions {
			if t.Type == models.TypeTransfer {
				continue
			}
			b.ActualBalance = b.ActualBalance.Add(t.Amount)
		}
	}

	b.VirtualBalance = b.TotalEnvelopeBalance.Add(b.TotalSavingsBalance)
	b.UnassignedCash = b.ActualBalance.Sub(b.VirtualBalance)

	return b
}

// Snapshot builds the balances from the stored metadata and the current
// envelope and savings goal balances.
func Snapshot(metadata models.BudgetMetadata, envelopes []models.Envelope, goals []models.SavingsGoal) Balances {
	b := Balances{
		ActualBalance:         metadata.ActualBalance,
		UnassignedCash:        metadata.UnassignedCash,
		IsActualBalanceManual: metadata.IsActualBalanceManual,
	}

	for _, e := range envelopes {
		b.TotalEnvelopeBalance = b.TotalEnvelopeBalance.Add(e.CurrentBalance)
	}

	for _, g := range goals {
		b.TotalSavingsBalance = b.TotalSavingsBalance.Add(g.CurrentAmount)
	}

	b.VirtualBalance = b.TotalEnvelopeBalance.Add(b.TotalSavingsBalance)
	return b
}

// Paycheck returns the balances after a paycheck of amount has been processed.
//
// The actual balance always increases by the full amount. In leftover mode, all
// of it becomes unassigned cash. In allocate mode, the allocations go to envelopes
// and only the rest becomes unassigned cash.
func Paycheck(current Balances, amount decimal.Decimal, mode models.PaycheckMode, allocations []models.EnvelopeAllocation) (Balances, error) {
	next := current
	next.ActualBalance = current.ActualBalance.Add(amount)

	switch mode {
	case models.ModeLeftover:
		next.UnassignedCash = current.UnassignedCash.Add(amount)
	case models.ModeAllocate:
		allocated := Total(allocations)
		next.TotalEnvelopeBalance = current.TotalEnvelopeBalance.Add(allocated)
		next.VirtualBalance = current.VirtualBalance.Add(allocated)
		next.UnassignedCash = current.UnassignedCash.Add(amount.Sub(allocated))
	default:
		return current, fmt.Errorf("%w %q, must be %q or %q", ErrUnknownPaycheckMode, mode, models.ModeAllocate, models.ModeLeftover)
	}

	return next, nil
}

// Distribution returns the balances after moving money from unassigned cash
// into envelopes. The actual balance does not change.
func Distribution(current Balances, distributions []models.EnvelopeAllocation) Balances {
	total := Total(distributions)

	next := current
	next.TotalEnvelopeBalance = current.TotalEnvelopeBalance.Add(total)
	next.VirtualBalance = current.VirtualBalance.Add(total)
	next.UnassignedCash = current.UnassignedCash.Sub(total)

	return next
}

// Total sums the amounts of all allocations.
func Total(allocations []models.EnvelopeAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Validation is the result of Validate. It is advisory only.
type Validation struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks that the actual balance equals virtual balance plus unassigned cash.
func Validate(b Balances) Validation {
	v := Validation{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	expected := b.VirtualBalance.Add(b.UnassignedCash)
	if b.ActualBalance.Sub(expected).Abs().GreaterThanOrEqual(Epsilon) {
		v.IsValid = false
		v.Errors = append(v.Errors, fmt.Sprintf("balance mismatch: actual balance %s does not equal virtual balance %s plus unassigned cash %s", b.ActualBalance.StringFixed(2), b.VirtualBalance.StringFixed(2), b.UnassignedCash.StringFixed(2)))
	}

	if b.UnassignedCash.LessThan(NegativeUnassignedWarning) {
		v.Warnings = append(v.Warnings, fmt.Sprintf("unassigned cash is unusually low: %s", b.UnassignedCash.StringFixed(2)))
	}

	return v
}
