package v1_test

import (
	"net/http"

	v1 "github.com/violet-vault/backend/internal/controllers/v1"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/test"
)

func (suite *TestSuiteStandard) createTransaction(body map[string]any) models.Transaction {
	r := suite.request(http.MethodPost, "/v1/transactions", body)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)
	return *response.Data
}

func (suite *TestSuiteStandard) transactions(query string) []models.Transaction {
	r := suite.request(http.MethodGet, "/v1/transactions"+query, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	return response.Data
}

func (suite *TestSuiteStandard) TestTransactionLifecycle() {
	suite.setActualBalance("1000")
	groceries := suite.createEnvelope("Groceries", "200")

	transaction := suite.createTransaction(map[string]any{
		"envelopeId":  groceries.ID,
		"amount":      "50",
		"type":        "expense",
		"description": "Farmers market",
	})
	suite.assertDecimal("-50", transaction.Amount)
	suite.Assert().Equal(models.TypeExpense, transaction.Type)
	suite.assertBalances("950", "150", "800")

	r := suite.request(http.MethodGet, "/v1/transactions/"+transaction.ID, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// Changing the amount reverses the old effect and applies the new one
	r = suite.request(http.MethodPatch, "/v1/transactions/"+transaction.ID, map[string]any{
		"amount": "-80",
		"notes":  "Cheese was expensive",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.assertDecimal("-80", response.Data.Amount)
	suite.Assert().Equal("Cheese was expensive", response.Data.Notes)
	suite.Assert().NotNil(response.Data.UpdatedAt)
	suite.assertBalances("920", "120", "800")

	r = suite.request(http.MethodPost, "/v1/transactions/"+transaction.ID+"/reconcile", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().True(response.Data.Reconciled)

	r = suite.request(http.MethodDelete, "/v1/transactions/"+transaction.ID, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.assertBalances("1000", "200", "800")

	// Deleting again succeeds
	r = suite.request(http.MethodDelete, "/v1/transactions/"+transaction.ID, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = suite.request(http.MethodGet, "/v1/transactions/"+transaction.ID, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestCreateTransactionRejected() {
	suite.setActualBalance("1000")
	groceries := suite.createEnvelope("Groceries", "200")

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"No envelope", map[string]any{"amount": "-10"}, http.StatusBadRequest},
		{"Unknown envelope", map[string]any{"amount": "-10", "envelopeId": "missing"}, http.StatusNotFound},
		{"Invalid type", map[string]any{"amount": "-10", "envelopeId": groceries.ID, "type": "gift"}, http.StatusBadRequest},
		{"Invalid receipt URL", map[string]any{"amount": "-10", "envelopeId": groceries.ID, "receiptUrl": "not a url"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := suite.request(http.MethodPost, "/v1/transactions", tt.body)
			test.AssertHTTPStatus(suite.T(), &r, tt.status)

			var response v1.TransactionResponse
			test.DecodeResponse(suite.T(), &r, &response)
			suite.Assert().NotNil(response.Error)
			suite.Assert().Nil(response.Data)
		})
	}

	suite.Assert().Len(suite.transactions(""), 0)
	suite.assertBalances("1000", "200", "800")
}

func (suite *TestSuiteStandard) TestGetTransactions() {
	suite.setActualBalance("1000")
	groceries := suite.createEnvelope("Groceries", "200")
	rent := suite.createEnvelope("Rent", "500")

	suite.createTransaction(map[string]any{"envelopeId": groceries.ID, "amount": "-20", "category": "Food"})
	suite.createTransaction(map[string]any{"envelopeId": rent.ID, "amount": "-500", "category": "Housing"})
	suite.createTransaction(map[string]any{"envelopeId": groceries.ID, "amount": "100", "type": "transfer"})

	tests := []struct {
		query string
		count int
	}{
		{"", 3},
		{"?envelope=" + groceries.ID, 2},
		{"?category=Housing", 1},
		{"?type=transfer", 1},
		{"?type=expense", 2},
		{"?reconciled=true", 0},
		{"?start=2000-01-01T00:00:00Z", 3},
		{"?end=2000-01-01T00:00:00Z", 0},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			suite.Assert().Len(suite.transactions(tt.query), tt.count)
		})
	}

	r := suite.request(http.MethodGet, "/v1/transactions?type=gift", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(http.MethodGet, "/v1/transactions/recent?limit=2", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Len(response.Data, 2)

	r = suite.request(http.MethodGet, "/v1/analytics", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Len(response.Data, 2, "Transfers are excluded by default")

	r = suite.request(http.MethodGet, "/v1/analytics?includeTransfers=true", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Len(response.Data, 3)
}

func (suite *TestSuiteStandard) TestSplitTransaction() {
	suite.setActualBalance("1000")
	groceries := suite.createEnvelope("Groceries", "200")
	household := suite.createEnvelope("Household", "50")

	parent := suite.createTransaction(map[string]any{
		"envelopeId":  groceries.ID,
		"amount":      "-100",
		"description": "Walmart",
	})
	suite.assertBalances("900", "150", "750")

	r := suite.request(http.MethodPost, "/v1/transactions/"+parent.ID+"/split", []map[string]any{
		{"description": "Food", "amount": "60"},
		{"description": "Soap", "amount": "40", "envelopeId": household.ID},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.SplitResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().True(response.Data.Parent.IsSplit)
	suite.Require().Len(response.Data.Children, 2)
	suite.Assert().Equal(groceries.ID, response.Data.Children[0].EnvelopeID)
	suite.Assert().Equal(household.ID, response.Data.Children[1].EnvelopeID)

	// 200 - 60 in groceries, 50 - 40 in household
	suite.assertBalances("900", "150", "750")

	// Splits must add up to the amount
	r = suite.request(http.MethodPost, "/v1/transactions/"+response.Data.Children[0].ID+"/split", []map[string]any{
		{"description": "Cheese", "amount": "10"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(http.MethodPost, "/v1/transactions/missing/split", []map[string]any{
		{"description": "Cheese", "amount": "10"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	// Deleting the parent deletes the children
	r = suite.request(http.MethodDelete, "/v1/transactions/"+parent.ID, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	suite.Assert().Len(suite.transactions(""), 0)
	suite.assertBalances("1000", "250", "750")
}
