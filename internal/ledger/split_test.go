package ledger_test

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/notify"
	"github.com/violet-vault/backend/internal/split"
	"github.com/violet-vault/backend/internal/store"
)

func (suite *TestSuiteStandard) TestSplitTransaction() {
	suite.createEnvelope("groceries", "Groceries", "200")
	suite.createEnvelope("household", "Household", "50")
	suite.seedMetadata("1000", "750")

	parent, err := suite.engine.AddTransaction(suite.ctx, models.Transaction{
		ID:          "walmart",
		Amount:      decimal.NewFromInt(-100),
		Description: "Walmart",
		Merchant:    "Walmart",
		EnvelopeID:  "groceries",
	})
	suite.Require().Nil(err)
	suite.assertBalances("900", "750")

	updated, children, err := suite.engine.SplitTransaction(suite.ctx, parent.ID, []split.Allocation{
		{Description: "Food", Amount: decimal.NewFromInt(60), Category: "Groceries"},
		{Description: "Soap", Amount: decimal.NewFromInt(40), Category: "Household", EnvelopeID: "household"},
	})
	suite.Require().Nil(err)

	suite.Assert().True(updated.IsSplit)
	suite.Assert().Equal([]string{"walmart_split_0", "walmart_split_1"}, updated.SplitInto)

	suite.Require().Len(children, 2)
	suite.Assert().Equal("groceries", children[0].EnvelopeID)
	suite.Assert().Equal("household", children[1].EnvelopeID)
	suite.Assert().Equal("walmart", children[1].ParentTransactionID)
	suite.assertDecimal("-60", children[0].Amount)
	suite.assertDecimal("-40", children[1].Amount)

	suite.assertDecimal("140", suite.envelopeBalance("groceries"))
	suite.assertDecimal("10", suite.envelopeBalance("household"))
	suite.assertBalances("900", "750")

	suite.Assert().Equal([]string{notify.TransactionAdded, notify.TransactionUpdated, notify.TransactionAdded, notify.TransactionAdded}, suite.recorder.changes)

	// Deleting the parent deletes the children
	suite.Require().Nil(suite.engine.DeleteTransaction(suite.ctx, parent.ID))

	count, err := store.Count[models.Transaction](suite.ctx, suite.store)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(0), count)

	suite.assertDecimal("200", suite.envelopeBalance("groceries"))
	suite.assertDecimal("50", suite.envelopeBalance("household"))
	suite.assertBalances("1000", "750")
}

func (suite *TestSuiteStandard) TestSplitTransactionRejected() {
	suite.createEnvelope("groceries", "Groceries", "0")

	parent, err := suite.engine.AddTransaction(suite.ctx, models.Transaction{Amount: decimal.NewFromInt(-100), EnvelopeID: "groceries"})
	suite.Require().Nil(err)

	tests := []struct {
		name   string
		splits []split.Allocation
		err    error
	}{
		{"No splits", []split.Allocation{}, ledger.ErrValidationFailed},
		{"Unbalanced", []split.Allocation{{Description: "A", Category: "A", Amount: decimal.NewFromInt(90)}}, ledger.ErrValidationFailed},
		{"Missing description", []split.Allocation{{Category: "A", Amount: decimal.NewFromInt(100)}}, ledger.ErrValidationFailed},
		{"Unknown envelope", []split.Allocation{{Description: "A", Category: "A", Amount: decimal.NewFromInt(100), EnvelopeID: "missing"}}, ledger.ErrEnvelopeNotFound},
	}

	for _, tt := range tests {
		_, _, err := suite.engine.SplitTransaction(suite.ctx, parent.ID, tt.splits)
		suite.Assert().True(errors.Is(err, tt.err), "%s: %v", tt.name, err)
	}

	_, _, err = suite.engine.SplitTransaction(suite.ctx, "missing", []split.Allocation{{Description: "A", Category: "A", Amount: decimal.NewFromInt(100)}})
	suite.Assert().True(errors.Is(err, ledger.ErrNotFound), "%v", err)

	stored, err := store.Get[models.Transaction](suite.ctx, suite.store, parent.ID)
	suite.Require().Nil(err)
	suite.Assert().False(stored.IsSplitParent())
	suite.assertDecimal("-100", suite.envelopeBalance("groceries"))

	// A split transaction cannot be split again
	_, children, err := suite.engine.SplitTransaction(suite.ctx, parent.ID, []split.Allocation{{Description: "A", Category: "A", Amount: decimal.NewFromInt(100)}})
	suite.Require().Nil(err)

	_, _, err = suite.engine.SplitTransaction(suite.ctx, parent.ID, []split.Allocation{{Description: "A", Category: "A", Amount: decimal.NewFromInt(100)}})
	suite.Assert().True(errors.Is(err, ledger.ErrValidationFailed), "%v", err)

	_, _, err = suite.engine.SplitTransaction(suite.ctx, children[0].ID, []split.Allocation{{Description: "A", Category: "A", Amount: decimal.NewFromInt(100)}})
	suite.Assert().True(errors.Is(err, ledger.ErrValidationFailed), "%v", err)
}

func (suite *TestSuiteStandard) TestSplitTransactionAmountLocked() {
	suite.createEnvelope("groceries", "Groceries", "0")

	parent, err := suite.engine.AddTransaction(suite.ctx, models.Transaction{Amount: decimal.NewFromInt(-100), EnvelopeID: "groceries"})
	suite.Require().Nil(err)

	_, _, err = suite.engine.SplitTransaction(suite.ctx, parent.ID, []split.Allocation{
		{Description: "A", Category: "A", Amount: decimal.NewFromInt(50)},
		{Description: "B", Category: "B", Amount: decimal.NewFromInt(50)},
	})
	suite.Require().Nil(err)

	amount := decimal.NewFromInt(-10)
	_, err = suite.engine.UpdateTransaction(suite.ctx, parent.ID, ledger.TransactionUpdate{Amount: &amount})
	suite.Assert().True(errors.Is(err, ledger.ErrValidationFailed), "%v", err)

	notes := "Receipt in the drawer"
	updated, err := suite.engine.UpdateTransaction(suite.ctx, parent.ID, ledger.TransactionUpdate{Notes: &notes})
	suite.Require().Nil(err)
	suite.Assert().Equal(notes, updated.Notes)

	suite.assertDecimal("-100", suite.envelopeBalance("groceries"))
	suite.assertConsistent()
}
