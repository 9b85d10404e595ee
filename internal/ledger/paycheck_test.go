package ledger_test

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

func allocate(envelopeID, amount string) models.EnvelopeAllocation {
	return models.EnvelopeAllocation{EnvelopeID: envelopeID, Amount: decimal.RequireFromString(amount)}
}

func (suite *TestSuiteStandard) TestPaycheckScenario() {
	suite.createEnvelope("groceries", "Groceries", "0")
	suite.seedMetadata("1000", "1000")

	record, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{
		Amount:              decimal.NewFromInt(500),
		Source:              "ACME Corp",
		Mode:                models.ModeAllocate,
		EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "200")},
	})
	suite.Require().Nil(err)

	suite.assertDecimal("200", suite.envelopeBalance("groceries"))
	suite.assertBalances("1500", "1300")

	suite.assertDecimal("1000", record.UnassignedCashBefore)
	suite.assertDecimal("1300", record.UnassignedCashAfter)
	suite.assertDecimal("1000", record.ActualBalanceBefore)
	suite.assertDecimal("1500", record.ActualBalanceAfter)
	suite.Assert().Len(record.EnvelopeAllocations, 1)
	suite.Assert().Contains(suite.recorder.scopes, projection.Paychecks)

	suite.Require().Nil(suite.engine.DeletePaycheck(suite.ctx, record.ID))

	suite.assertDecimal("0", suite.envelopeBalance("groceries"))
	suite.assertBalances("1000", "1000")

	count, err := store.Count[models.PaycheckHistory](suite.ctx, suite.store)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(0), count)
}

func (suite *TestSuiteStandard) TestPaycheckLeftover() {
	suite.createEnvelope("groceries", "Groceries", "50")
	suite.seedMetadata("100", "50")

	record, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{
		Amount: decimal.NewFromInt(300),
		Mode:   models.ModeLeftover,
		// Ignored in leftover mode
		EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "100")},
	})
	suite.Require().Nil(err)
	suite.Assert().Empty(record.EnvelopeAllocations)

	suite.assertDecimal("50", suite.envelopeBalance("groceries"))
	suite.assertBalances("400", "350")
}

func (suite *TestSuiteStandard) TestPaycheckSameEnvelopeTwice() {
	suite.createEnvelope("groceries", "Groceries", "0")

	_, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{
		Amount:              decimal.NewFromInt(100),
		Mode:                models.ModeAllocate,
		EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "30"), allocate("groceries", "20")},
	})
	suite.Require().Nil(err)

	suite.assertDecimal("50", suite.envelopeBalance("groceries"))
	suite.assertBalances("100", "50")
}

func (suite *TestSuiteStandard) TestPaycheckRejected() {
	suite.createEnvelope("groceries", "Groceries", "0")
	suite.seedMetadata("1000", "1000")

	tests := []struct {
		name     string
		paycheck ledger.Paycheck
		err      error
	}{
		{"Unknown mode", ledger.Paycheck{Amount: decimal.NewFromInt(10), Mode: "everything"}, ledger.ErrValidationFailed},
		{"Zero amount", ledger.Paycheck{Amount: decimal.Zero, Mode: models.ModeLeftover}, ledger.ErrValidationFailed},
		{"Negative allocation", ledger.Paycheck{Amount: decimal.NewFromInt(10), Mode: models.ModeAllocate, EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "-1")}}, ledger.ErrValidationFailed},
		{"Allocation without envelope", ledger.Paycheck{Amount: decimal.NewFromInt(10), Mode: models.ModeAllocate, EnvelopeAllocations: []models.EnvelopeAllocation{allocate("", "1")}}, ledger.ErrValidationFailed},
		{"Unknown envelope", ledger.Paycheck{Amount: decimal.NewFromInt(10), Mode: models.ModeAllocate, EnvelopeAllocations: []models.EnvelopeAllocation{allocate("missing", "1")}}, ledger.ErrEnvelopeNotFound},
		{"Unknown deposit envelope", ledger.Paycheck{Amount: decimal.NewFromInt(10), Mode: models.ModeLeftover, DepositEnvelopeID: "missing"}, ledger.ErrEnvelopeNotFound},
	}

	for _, tt := range tests {
		_, err := suite.engine.ProcessPaycheck(suite.ctx, tt.paycheck)
		suite.Assert().True(errors.Is(err, tt.err), "%s: %v", tt.name, err)
	}

	var v *ledger.ValidationError
	_, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{Amount: decimal.NewFromInt(10), Mode: "everything"})
	suite.Require().True(errors.As(err, &v))
	suite.Assert().Contains(v.Fields, "mode")

	count, err := store.Count[models.PaycheckHistory](suite.ctx, suite.store)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(0), count)
	suite.assertBalances("1000", "1000")
}

func (suite *TestSuiteStandard) TestDeletePaycheckNotFound() {
	err := suite.engine.DeletePaycheck(suite.ctx, "does-not-exist")
	suite.Assert().True(errors.Is(err, ledger.ErrNotFound), "%v", err)
}

func (suite *TestSuiteStandard) TestDeletePaycheckKeepsIndependentChanges() {
	suite.createEnvelope("groceries", "Groceries", "0")
	suite.createEnvelope("rent", "Rent", "0")
	suite.seedMetadata("1000", "1000")

	record, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{
		Amount:              decimal.NewFromInt(500),
		Mode:                models.ModeAllocate,
		EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "200")},
	})
	suite.Require().Nil(err)

	_, err = suite.engine.DistributeUnassignedCash(suite.ctx, []models.EnvelopeAllocation{allocate("rent", "300")})
	suite.Require().Nil(err)
	suite.assertBalances("1500", "1000")

	suite.Require().Nil(suite.engine.DeletePaycheck(suite.ctx, record.ID))

	suite.assertDecimal("0", suite.envelopeBalance("groceries"))
	suite.assertDecimal("300", suite.envelopeBalance("rent"))
	suite.assertBalances("1000", "700")
}

func (suite *TestSuiteStandard) TestDeletePaycheckFloorsEnvelope() {
	suite.createEnvelope("groceries", "Groceries", "0")
	suite.seedMetadata("1000", "1000")

	record, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{
		Amount:              decimal.NewFromInt(500),
		Mode:                models.ModeAllocate,
		EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "200")},
	})
	suite.Require().Nil(err)

	_, err = suite.engine.AddTransaction(suite.ctx, models.Transaction{Amount: decimal.NewFromInt(-150), EnvelopeID: "groceries"})
	suite.Require().Nil(err)
	suite.assertBalances("1350", "1300")

	suite.Require().Nil(suite.engine.DeletePaycheck(suite.ctx, record.ID))

	// 50 - 200 is floored at 0, the 150 shortfall is taken from unassigned cash
	suite.assertDecimal("0", suite.envelopeBalance("groceries"))
	suite.assertBalances("850", "850")
}

func (suite *TestSuiteStandard) TestDeletePaycheckOfDeletedEnvelope() {
	suite.createEnvelope("groceries", "Groceries", "0")

	record, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{
		Amount:              decimal.NewFromInt(100),
		Mode:                models.ModeAllocate,
		EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "40")},
	})
	suite.Require().Nil(err)

	suite.Require().Nil(suite.engine.DeleteEnvelope(suite.ctx, "groceries"))
	suite.assertBalances("100", "100")

	suite.Require().Nil(suite.engine.DeletePaycheck(suite.ctx, record.ID))
	suite.assertBalances("0", "0")
}

func (suite *TestSuiteStandard) TestPaycheckDeposit() {
	suite.createEnvelope("groceries", "Groceries", "0")
	suite.createEnvelope("checking", "Checking", "0")
	suite.seedMetadata("1000", "1000")

	record, err := suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{
		Amount:              decimal.NewFromInt(500),
		Source:              "ACME Corp",
		Mode:                models.ModeAllocate,
		EnvelopeAllocations: []models.EnvelopeAllocation{allocate("groceries", "200")},
		DepositEnvelopeID:   "checking",
	})
	suite.Require().Nil(err)

	deposits, err := store.Where[models.Transaction](suite.ctx, suite.store, "", "paycheck_id = ?", record.ID)
	suite.Require().Nil(err)
	suite.Require().Len(deposits, 1)
	suite.Assert().Equal("Paycheck: ACME Corp", deposits[0].Description)
	suite.Assert().Equal(models.TypeIncome, deposits[0].Type)

	// The deposit is not counted twice
	suite.assertDecimal("0", suite.envelopeBalance("checking"))
	suite.assertBalances("1500", "1300")

	// Deleting the deposit deletes the paycheck
	suite.Require().Nil(suite.engine.DeleteTransaction(suite.ctx, deposits[0].ID))

	_, ok, err := store.Find[models.PaycheckHistory](suite.ctx, suite.store, record.ID)
	suite.Require().Nil(err)
	suite.Assert().False(ok)

	_, ok, err = store.Find[models.Transaction](suite.ctx, suite.store, deposits[0].ID)
	suite.Require().Nil(err)
	suite.Assert().False(ok)

	suite.assertDecimal("0", suite.envelopeBalance("groceries"))
	suite.assertBalances("1000", "1000")
}
