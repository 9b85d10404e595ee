package v1_test

import (
	"net/http"

	v1 "github.com/violet-vault/backend/internal/controllers/v1"
	"github.com/violet-vault/backend/test"
)

func (suite *TestSuiteStandard) envelopes(query string) []string {
	r := suite.request(http.MethodGet, "/v1/envelopes"+query, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.EnvelopeListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	names := []string{}
	for _, e := range response.Data {
		names = append(names, e.Name)
	}
	return names
}

func (suite *TestSuiteStandard) TestEnvelopeLifecycle() {
	suite.setActualBalance("1000")
	suite.assertBalances("1000", "0", "1000")

	groceries := suite.createEnvelope("Groceries", "200")
	suite.assertDecimal("200", groceries.CurrentBalance)
	suite.assertBalances("1000", "200", "800")

	r := suite.request(http.MethodGet, "/v1/envelopes/"+groceries.ID, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(http.MethodPatch, "/v1/envelopes/"+groceries.ID, map[string]any{
		"name":     "Food",
		"category": "Living",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.EnvelopeResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Food", response.Data.Name)
	suite.Assert().Equal("Living", response.Data.Category)
	suite.assertDecimal("200", response.Data.CurrentBalance)

	suite.Assert().Equal([]string{"Food"}, suite.envelopes(""))
	suite.Assert().Equal([]string{"Food"}, suite.envelopes("?category=Living"))
	suite.Assert().Equal([]string{}, suite.envelopes("?category=Transport"))

	// Archive
	r = suite.request(http.MethodPatch, "/v1/envelopes/"+groceries.ID, map[string]any{"archived": true})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	suite.Assert().Equal([]string{}, suite.envelopes(""))
	suite.Assert().Equal([]string{"Food"}, suite.envelopes("?includeArchived=true"))

	// Deleting returns the balance to unassigned cash
	r = suite.request(http.MethodDelete, "/v1/envelopes/"+groceries.ID, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.assertBalances("1000", "0", "1000")
}

func (suite *TestSuiteStandard) TestCreateEnvelopeRejected() {
	tests := []struct {
		name  string
		body  any
		field string
		err   string
	}{
		{"Empty body", "", "", "the request body must not be empty"},
		{"Broken body", `{ "name": `, "", "the body of your request contains invalid or un-parseable data"},
		{"No name", map[string]any{"category": "Food"}, "name", "name is required"},
		{"Negative balance", map[string]any{"name": "Groceries", "initialBalance": "-10"}, "initialBalance", "initialBalance must not be negative"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := suite.request(http.MethodPost, "/v1/envelopes", tt.body)
			test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

			var response v1.EnvelopeResponse
			test.DecodeResponse(suite.T(), &r, &response)
			suite.Require().NotNil(response.Error)
			suite.Assert().Contains(*response.Error, tt.err)

			if tt.field != "" {
				suite.Assert().Equal(tt.err, response.Fields[tt.field])
			}
		})
	}

	suite.Assert().Equal([]string{}, suite.envelopes(""))
}

func (suite *TestSuiteStandard) TestEnvelopeNotFound() {
	r := suite.request(http.MethodGet, "/v1/envelopes/missing", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(http.MethodPatch, "/v1/envelopes/missing", map[string]any{"name": "Groceries"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(http.MethodDelete, "/v1/envelopes/missing", nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
