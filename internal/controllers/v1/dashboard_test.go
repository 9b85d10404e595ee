package v1_test

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	v1 "github.com/violet-vault/backend/internal/controllers/v1"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/store"
	"github.com/violet-vault/backend/test"
)

func (suite *TestSuiteStandard) TestGetDashboard() {
	suite.setActualBalance("1000")
	suite.createEnvelope("Groceries", "200")
	rent := suite.createEnvelope("Rent", "300")

	r := suite.request(http.MethodPatch, "/v1/envelopes/"+rent.ID, map[string]any{"archived": true})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	_, err := store.Put(context.Background(), suite.store, models.Bill{
		Name:    "Electricity",
		DueDate: time.Now().UTC().AddDate(0, 0, -3),
		Amount:  decimal.NewFromInt(80),
	})
	suite.Require().Nil(err)

	r = suite.request(http.MethodGet, "/v1/dashboard", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.DashboardResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)

	suite.Assert().True(response.Data.Validation.IsValid, response.Data.Validation.Errors)
	suite.Assert().Equal(1, response.Data.ActiveEnvelopes)
	suite.Assert().Equal(1, response.Data.OverdueBills)
	suite.assertDecimal("500", response.Data.Balances.VirtualBalance)
	suite.assertDecimal("500", response.Data.Balances.UnassignedCash)
}
