package ledger_test

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
)

func (suite *TestSuiteStandard) TestDistributeUnassignedCash() {
	suite.createEnvelope("groceries", "Groceries", "0")
	suite.createEnvelope("rent", "Rent", "100")
	suite.seedMetadata("1100", "1000")

	b, err := suite.engine.DistributeUnassignedCash(suite.ctx, []models.EnvelopeAllocation{
		allocate("groceries", "300"),
		allocate("rent", "200"),
	})
	suite.Require().Nil(err)
	suite.assertDecimal("1100", b.ActualBalance)
	suite.assertDecimal("500", b.UnassignedCash)
	suite.assertDecimal("600", b.VirtualBalance)

	suite.assertDecimal("300", suite.envelopeBalance("groceries"))
	suite.assertDecimal("300", suite.envelopeBalance("rent"))
	suite.assertBalances("1100", "500")
}

func (suite *TestSuiteStandard) TestDistributeUnassignedCashRejected() {
	suite.createEnvelope("groceries", "Groceries", "0")
	suite.seedMetadata("1000", "1000")

	_, err := suite.engine.DistributeUnassignedCash(suite.ctx, nil)
	suite.Assert().True(errors.Is(err, ledger.ErrValidationFailed), "%v", err)

	_, err = suite.engine.DistributeUnassignedCash(suite.ctx, []models.EnvelopeAllocation{allocate("groceries", "0")})
	suite.Assert().True(errors.Is(err, ledger.ErrValidationFailed), "%v", err)

	_, err = suite.engine.DistributeUnassignedCash(suite.ctx, []models.EnvelopeAllocation{allocate("groceries", "10"), allocate("missing", "10")})
	suite.Assert().True(errors.Is(err, ledger.ErrEnvelopeNotFound), "%v", err)

	suite.assertDecimal("0", suite.envelopeBalance("groceries"))
	suite.assertBalances("1000", "1000")
}

func (suite *TestSuiteStandard) TestSetActualBalance() {
	suite.createEnvelope("groceries", "Groceries", "100")
	suite.seedMetadata("1000", "900")

	b, err := suite.engine.SetActualBalance(suite.ctx, decimal.NewFromInt(2000), true)
	suite.Require().Nil(err)
	suite.Assert().True(b.IsActualBalanceManual)
	suite.assertBalances("2000", "1900")

	m, err := suite.store.BudgetMetadata(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().True(m.IsActualBalanceManual)
}

func (suite *TestSuiteStandard) TestRecalculateBalances() {
	suite.createEnvelope("main", "Main", "0")

	_, err := suite.engine.AddTransaction(suite.ctx, models.Transaction{Amount: decimal.NewFromInt(1000), Type: models.TypeIncome, EnvelopeID: "main"})
	suite.Require().Nil(err)

	_, err = suite.engine.CreateEnvelope(suite.ctx, ledger.NewEnvelope{ID: "groceries", Name: "Groceries", InitialBalance: decimal.NewFromInt(200)})
	suite.Require().Nil(err)

	_, err = suite.engine.AddTransaction(suite.ctx, models.Transaction{Amount: decimal.NewFromInt(-50), EnvelopeID: "groceries"})
	suite.Require().Nil(err)

	_, err = suite.engine.ProcessPaycheck(suite.ctx, ledger.Paycheck{Amount: decimal.NewFromInt(300), Mode: models.ModeLeftover})
	suite.Require().Nil(err)
	suite.assertBalances("1250", "1100")

	// Drift the stored balances
	suite.seedMetadata("5", "5")

	b, err := suite.engine.RecalculateBalances(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().False(b.IsActualBalanceManual)
	suite.assertDecimal("150", b.VirtualBalance)
	suite.assertBalances("1250", "1100")
}

func (suite *TestSuiteStandard) TestRecalculateBalancesManual() {
	suite.createEnvelope("groceries", "Groceries", "100")

	_, err := suite.engine.SetActualBalance(suite.ctx, decimal.NewFromInt(700), true)
	suite.Require().Nil(err)

	suite.seedMetadata("700", "0")

	b, err := suite.engine.RecalculateBalances(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().True(b.IsActualBalanceManual)
	suite.assertBalances("700", "600")
}

func (suite *TestSuiteStandard) TestCheckBalancesKeepsStoredBalances() {
	suite.createEnvelope("groceries", "Groceries", "0")

	_, err := suite.engine.SetActualBalance(suite.ctx, decimal.NewFromInt(2000), false)
	suite.Require().Nil(err)

	// As on startup
	b, v, err := suite.engine.CheckBalances(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().True(v.IsValid, "%v", v.Errors)
	suite.assertDecimal("2000", b.ActualBalance)
	suite.assertBalances("2000", "2000")

	metadata, err := suite.store.BudgetMetadata(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().False(metadata.IsActualBalanceManual)
	suite.assertDecimal("2000", metadata.ActualBalance)
}

func (suite *TestSuiteStandard) TestCheckBalancesReportsDrift() {
	suite.createEnvelope("groceries", "Groceries", "100")
	suite.seedMetadata("1000", "5")

	_, v, err := suite.engine.CheckBalances(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().False(v.IsValid)
	suite.Assert().Len(v.Errors, 1)

	// Nothing is repaired
	metadata, err := suite.store.BudgetMetadata(suite.ctx)
	suite.Require().Nil(err)
	suite.assertDecimal("1000", metadata.ActualBalance)
	suite.assertDecimal("5", metadata.UnassignedCash)
}
