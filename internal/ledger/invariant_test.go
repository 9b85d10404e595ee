package ledger_test

import (
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
)

// TestBalanceInvariant runs a random sequence of mutations and checks that
// the actual balance equals virtual balance plus unassigned cash after each.
func (suite *TestSuiteStandard) TestBalanceInvariant() {
	envelopes := []string{"groceries", "rent", "fun"}
	for _, id := range envelopes {
		suite.createEnvelope(id, id, "0")
	}

	r := rand.New(rand.NewSource(42))
	amount := func() decimal.Decimal {
		return decimal.New(r.Int63n(50000)+1, -2)
	}
	types := []models.TransactionType{models.TypeExpense, models.TypeIncome, models.TypeTransfer}

	transactions := []string{}
	paychecks := []string{}

	for i := 0; i < 80; i++ {
		switch op := r.Intn(5); op {
		case 0:
			t, err := suite.engine.AddTransaction(suite.ctx, models.Transaction{
				Amount:     amount(),
				Type:       types[r.Intn(len(types))],
				EnvelopeID: envelopes[r.Intn(len(envelopes))],
			})
			suite.Require().Nil(err)
			transactions = append(transactions, t.ID)
		case 1:
			if len(transactions) == 0 {
				continue
			}
			a := amount()
			envelopeID := envelopes[r.Intn(len(envelopes))]
			_, err := suite.engine.UpdateTransaction(suite.ctx, transactions[r.Intn(len(transactions))], ledger.TransactionUpdate{Amount: &a, EnvelopeID: &envelopeID})
			suite.Require().Nil(err)
		case 2:
			if len(transactions) == 0 {
				continue
			}
			n := r.Intn(len(transactions))
			suite.Require().Nil(suite.engine.DeleteTransaction(suite.ctx, transactions[n]))
			transactions = append(transactions[:n], transactions[n+1:]...)
		case 3:
			mode := models.ModeLeftover
			allocations := []models.EnvelopeAllocation{}
			if r.Intn(2) == 0 {
				mode = models.ModeAllocate
				allocations = append(allocations, models.EnvelopeAllocation{EnvelopeID: envelopes[r.Intn(len(envelopes))], Amount: amount()})
			}

			p, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{Amount: amount(), Mode: mode, EnvelopeAllocations: allocations})
			suite.Require().Nil(err)
			paychecks = append(paychecks, p.ID)
		case 4:
			if len(paychecks) == 0 {
				continue
			}
			n := r.Intn(len(paychecks))
			suite.Require().Nil(suite.engine.DeletePaycheck(suite.ctx, paychecks[n]))
			paychecks = append(paychecks[:n], paychecks[n+1:]...)
		}

		suite.assertConsistent()
	}
}

// TestPaycheckReversalIsExact processes and deletes paychecks on varied
// starting balances.
func (suite *TestSuiteStandard) TestPaycheckReversalIsExact() {
	suite.createEnvelope("groceries", "Groceries", "12.34")
	suite.createEnvelope("rent", "Rent", "800")
	suite.seedMetadata("2000", "1187.66")

	tests := []ledger.Paycheck{
		{Amount: decimal.RequireFromString("1234.56"), Mode: models.ModeLeftover},
		{Amount: decimal.RequireFromString("1000"), Mode: models.ModeAllocate, EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "100.01"), allocate("rent", "899.99")}},
		{Amount: decimal.RequireFromString("10"), Mode: models.ModeAllocate, EnvelopeAllocations: []models.EnvelopeAllocation{allocate("rent", "25")}},
	}

	for _, p := range tests {
		record, err := suite.engine.ProcessPaycheck(suite.ctx, p)
		suite.Require().Nil(err)
		suite.assertConsistent()

		suite.Require().Nil(suite.engine.DeletePaycheck(suite.ctx, record.ID))

		suite.assertDecimal("12.34", suite.envelopeBalance("groceries"))
		suite.assertDecimal("800", suite.envelopeBalance("rent"))
		suite.assertBalances("2000", "1187.66")
	}
}
