package store_test

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/store"
)

func (suite *TestSuiteStandard) TestPutGet() {
	envelope, err := store.Put(suite.ctx, suite.store, models.Envelope{
		Name:           "  Groceries ",
		Category:       "Food",
		CurrentBalance: decimal.NewFromFloat(12.5),
	})
	suite.Require().Nil(err)
	suite.Assert().NotEmpty(envelope.ID)
	suite.Assert().False(envelope.LastModified.IsZero())

	read, err := store.Get[models.Envelope](suite.ctx, suite.store, envelope.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal("Groceries", read.Name)
	suite.Assert().True(decimal.NewFromFloat(12.5).Equal(read.CurrentBalance))
}

func (suite *TestSuiteStandard) TestPutDoesNotModifyInput() {
	input := models.Envelope{Name: "Rent", Category: "Housing"}

	stored, err := store.Put(suite.ctx, suite.store, input)
	suite.Require().Nil(err)

	suite.Assert().Empty(input.ID)
	suite.Assert().True(input.LastModified.IsZero())
	suite.Assert().NotEmpty(stored.ID)
}

func (suite *TestSuiteStandard) TestPutReplaces() {
	envelope, err := store.Put(suite.ctx, suite.store, models.Envelope{Name: "Fun"})
	suite.Require().Nil(err)

	envelope.CurrentBalance = decimal.NewFromInt(40)
	_, err = store.Put(suite.ctx, suite.store, envelope)
	suite.Require().Nil(err)

	count, err := store.Count[models.Envelope](suite.ctx, suite.store)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(1), count)

	read, err := store.Get[models.Envelope](suite.ctx, suite.store, envelope.ID)
	suite.Require().Nil(err)
	suite.Assert().True(decimal.NewFromInt(40).Equal(read.CurrentBalance))
}

func (suite *TestSuiteStandard) TestGetNotFound() {
	_, err := store.Get[models.Transaction](suite.ctx, suite.store, "missing")
	suite.Require().NotNil(err)
	suite.Assert().True(errors.Is(err, store.ErrNotFound))
	suite.Assert().Contains(err.Error(), "transaction matching your query")
}

func (suite *TestSuiteStandard) TestFind() {
	_, ok, err := store.Find[models.Envelope](suite.ctx, suite.store, "missing")
	suite.Require().Nil(err)
	suite.Assert().False(ok)
}

func (suite *TestSuiteStandard) TestDeleteIdempotent() {
	envelope, err := store.Put(suite.ctx, suite.store, models.Envelope{Name: "Gone"})
	suite.Require().Nil(err)

	suite.Require().Nil(store.Delete[models.Envelope](suite.ctx, suite.store, envelope.ID))
	suite.Require().Nil(store.Delete[models.Envelope](suite.ctx, suite.store, envelope.ID))

	_, ok, err := store.Find[models.Envelope](suite.ctx, suite.store, envelope.ID)
	suite.Require().Nil(err)
	suite.Assert().False(ok)
}

func (suite *TestSuiteStandard) TestTransactionRollback() {
	errAbort := errors.New("abort")

	err := suite.store.Transaction(suite.ctx, func(tx *store.Store) error {
		_, err := store.Put(suite.ctx, tx, models.Envelope{ID: "rolled-back", Name: "Rolled back"})
		suite.Require().Nil(err)
		return errAbort
	})
	suite.Assert().ErrorIs(err, errAbort)

	_, ok, err := store.Find[models.Envelope](suite.ctx, suite.store, "rolled-back")
	suite.Require().Nil(err)
	suite.Assert().False(ok, "Write inside a failed transaction must not be visible")
}

func (suite *TestSuiteStandard) TestBulkPutAndBatchUpdate() {
	err := suite.store.BulkUpsertEnvelopes(suite.ctx, []models.Envelope{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	})
	suite.Require().Nil(err)

	err = suite.store.BatchUpdate(suite.ctx, []store.BulkUpdate{
		{Collection: "envelopes", ID: "a", Changes: map[string]any{"archived": true}},
		{Collection: "envelopes", ID: "missing", Changes: map[string]any{"archived": true}},
	})
	suite.Require().Nil(err)

	a, err := store.Get[models.Envelope](suite.ctx, suite.store, "a")
	suite.Require().Nil(err)
	suite.Assert().True(a.Archived)

	b, err := store.Get[models.Envelope](suite.ctx, suite.store, "b")
	suite.Require().Nil(err)
	suite.Assert().False(b.Archived)

	err = suite.store.BatchUpdate(suite.ctx, []store.BulkUpdate{{Collection: "cache", ID: "a"}})
	suite.Assert().NotNil(err, "Updates to collections that are not batch updatable must be rejected")
}

func (suite *TestSuiteStandard) TestBudgetMetadataDefaults() {
	m, err := suite.store.BudgetMetadata(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().Equal(models.MetadataID, m.ID)
	suite.Assert().True(m.ActualBalance.IsZero())
	suite.Assert().True(m.UnassignedCash.IsZero())

	m.ActualBalance = decimal.NewFromInt(1000)
	written, err := suite.store.SetBudgetMetadata(suite.ctx, m)
	suite.Require().Nil(err)
	suite.Assert().Equal(1, written.Version)

	m, err = suite.store.BudgetMetadata(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().True(decimal.NewFromInt(1000).Equal(m.ActualBalance))
}

func (suite *TestSuiteStandard) TestCache() {
	type dashboard struct {
		Total string
	}

	suite.Require().Nil(suite.store.SetCachedValue(suite.ctx, "dashboard:balances", dashboard{Total: "10"}, time.Minute, "dashboard"))
	suite.Require().Nil(suite.store.SetCachedValue(suite.ctx, "transactions:recent:30", []string{"x"}, time.Minute, "transactions"))
	suite.Require().Nil(suite.store.SetCachedValue(suite.ctx, "transactions:old", "x", -time.Minute, "transactions"))

	var d dashboard
	ok, err := suite.store.GetCachedValue(suite.ctx, "dashboard:balances", &d)
	suite.Require().Nil(err)
	suite.Assert().True(ok)
	suite.Assert().Equal("10", d.Total)

	var s string
	ok, err = suite.store.GetCachedValue(suite.ctx, "transactions:old", &s)
	suite.Require().Nil(err)
	suite.Assert().False(ok, "Expired entries must be reported as a miss")

	n, err := suite.store.InvalidateCacheKeys(suite.ctx, "transactions:*")
	suite.Require().Nil(err)
	suite.Assert().Equal(1, n)

	suite.Require().Nil(suite.store.ClearCacheCategory(suite.ctx, "dashboard"))
	ok, err = suite.store.GetCachedValue(suite.ctx, "dashboard:balances", &d)
	suite.Require().Nil(err)
	suite.Assert().False(ok)
}

func (suite *TestSuiteStandard) TestOptimize() {
	for i := 0; i < store.MaxAuditLogEntries+5; i++ {
		suite.Require().Nil(suite.store.Audit(suite.ctx, "create", "envelope", "e", nil))
	}
	suite.Require().Nil(suite.store.SetCachedValue(suite.ctx, "expired", 1, -time.Second, "test"))

	result, err := suite.store.Optimize(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(5), result.AuditLogEntries)
	suite.Assert().Equal(int64(1), result.ExpiredCacheEntries)

	stats, err := suite.store.Stats(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(store.MaxAuditLogEntries), stats.AuditLog)
	suite.Assert().Equal(int64(0), stats.Cache)
}

func (suite *TestSuiteStandard) TestBudgetCommits() {
	suite.Require().Nil(suite.store.CreateBudgetCommit(suite.ctx, models.BudgetCommit{Message: "first", Author: "me"}))
	suite.Require().Nil(suite.store.CreateBudgetCommit(suite.ctx, models.BudgetCommit{Message: "second", Author: "me", Timestamp: time.Now().Add(time.Hour)}))

	commits, err := suite.store.BudgetCommits(suite.ctx, 10)
	suite.Require().Nil(err)
	suite.Require().Len(commits, 2)
	suite.Assert().Equal("second", commits[0].Message)

	commit, err := suite.store.BudgetCommit(suite.ctx, commits[1].Hash)
	suite.Require().Nil(err)
	suite.Assert().Equal("first", commit.Message)

	_, err = suite.store.BudgetCommit(suite.ctx, "nope")
	suite.Assert().ErrorIs(err, store.ErrNotFound)
}

func (suite *TestSuiteStandard) TestClearData() {
	_, err := store.Put(suite.ctx, suite.store, models.Envelope{Name: "Fun"})
	suite.Require().Nil(err)
	_, err = suite.store.SetBudgetMetadata(suite.ctx, models.BudgetMetadata{ActualBalance: decimal.NewFromInt(5)})
	suite.Require().Nil(err)

	suite.Require().Nil(suite.store.ClearData(suite.ctx))

	stats, err := suite.store.Stats(suite.ctx)
	suite.Require().Nil(err)
	suite.Assert().Equal(store.Stats{}, stats)
}

func (suite *TestSuiteStandard) TestClosedDatabase() {
	suite.CloseDB()

	_, err := store.Put(suite.ctx, suite.store, models.Envelope{Name: "Closed"})
	suite.Assert().ErrorIs(err, store.ErrStorage)

	_, err = suite.store.BudgetMetadata(suite.ctx)
	suite.Assert().ErrorIs(err, store.ErrStorage)
}

func (suite *TestSuiteStandard) TestPing() {
	suite.Assert().Nil(suite.store.Ping(suite.ctx))

	suite.CloseDB()
	suite.Assert().ErrorIs(suite.store.Ping(suite.ctx), store.ErrStorage)
}
