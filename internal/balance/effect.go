package balance

import (
	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/models"
)

// Delta is the change a transaction applies to the balances.
type Delta struct {
	Actual     decimal.Decimal
	Unassigned decimal.Decimal
	EnvelopeID string
	Envelope   decimal.Decimal
}

// Effect returns the change a stored transaction applies to the balances.
//
// Expenses are spent from their envelope and the bank account. Income raises
// the bank account and unassigned cash. Transfers move money between unassigned
// cash and the envelope.
//
// Paycheck deposits and split parents have no effect of their own: the paycheck
// and the split children carry it.
func Effect(t models.Transaction) Delta {
	d := Delta{EnvelopeID: t.EnvelopeID}

	if t.PaycheckID != "" || t.IsSplitParent() {
		return d
	}

	switch t.Type {
	case models.TypeExpense:
		d.Envelope = t.Amount
		d.Actual = t.Amount
	case models.TypeIncome:
		d.Actual = t.Amount
		d.Unassigned = t.Amount
	case models.TypeTransfer:
		d.Envelope = t.Amount
		d.Unassigned = t.Amount.Neg()
	}

	return d
}

// Neg returns the reversal of the delta.
func (d Delta) Neg() Delta {
	return Delta{
		Actual:     d.Actual.Neg(),
		Unassigned: d.Unassigned.Neg(),
		EnvelopeID: d.EnvelopeID,
		Envelope:   d.Envelope.Neg(),
	}
}

func (d Delta) IsZero() bool {
	return d.Actual.IsZero() && d.Unassigned.IsZero() && d.Envelope.IsZero()
}

// Apply returns the balances after the delta.
func (b Balances) Apply(d Delta) Balances {
	next := b
	next.ActualBalance = b.ActualBalance.Add(d.Actual)
	next.UnassignedCash = b.UnassignedCash.Add(d.Unassigned)
	next.TotalEnvelopeBalance = b.TotalEnvelopeBalance.Add(d.Envelope)
	next.VirtualBalance = b.VirtualBalance.Add(d.Envelope)
	return next
}
