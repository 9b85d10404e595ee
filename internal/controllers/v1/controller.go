// Package v1 is the HTTP API for budget data.
package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/query"
)

// Controller holds the services the handlers use. All mutations go
// through the Engine, all reads through the Query service.
type Controller struct {
	Engine *ledger.Engine
	Query  *query.Service
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.OPTIONS("", Options)

	co.RegisterEnvelopeRoutes(r.Group("/envelopes"))
	co.RegisterTransactionRoutes(r.Group("/transactions"))
	co.RegisterPaycheckRoutes(r.Group("/paychecks"))
	co.RegisterBalanceRoutes(r.Group("/balances"))
	co.RegisterSavingsGoalRoutes(r.Group("/savings-goals"))
	co.RegisterBillRoutes(r.Group("/bills"))
	co.RegisterDashboardRoutes(r.Group("/dashboard"))
	co.RegisterAnalyticsRoutes(r.Group("/analytics"))
}

type URIID struct {
	ID string `uri:"id" binding:"required"` // ID of the resource
}

// responseError is embedded in all responses.
type responseError struct {
	Error  *string           `json:"error" example:"the referenced envelope does not exist"` // The error, if any occurred
	Fields map[string]string `json:"fields,omitempty"`                                       // Messages for invalid fields of the request
}

func newError(err error) responseError {
	e := err.Error()
	r := responseError{Error: &e}

	var v *ledger.ValidationError
	if errors.As(err, &v) {
		r.Fields = v.Fields
	}

	return r
}

// status returns the HTTP status for an error.
func status(err error) int {
	if errors.Is(err, ledger.ErrStorageFailure) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, ledger.ErrEnvelopeNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

type Response struct {
	Links Links `json:"links"`
}

type Links struct {
	Envelopes    string `json:"envelopes" example:"https://example.com/api/v1/envelopes"`         // URL of envelope list endpoint
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions"`   // URL of transaction list endpoint
	Paychecks    string `json:"paychecks" example:"https://example.com/api/v1/paychecks"`         // URL of paycheck list endpoint
	Balances     string `json:"balances" example:"https://example.com/api/v1/balances"`           // URL of the balances endpoint
	SavingsGoals string `json:"savingsGoals" example:"https://example.com/api/v1/savings-goals"` // URL of savings goal list endpoint
	Bills        string `json:"bills" example:"https://example.com/api/v1/bills"`                 // URL of bill list endpoint
	Dashboard    string `json:"dashboard" example:"https://example.com/api/v1/dashboard"`         // URL of the dashboard endpoint
	Analytics    string `json:"analytics" example:"https://example.com/api/v1/analytics"`         // URL of the analytics endpoint
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := httputil.BaseURL(c) + "/v1"

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Envelopes:    url + "/envelopes",
			Transactions: url + "/transactions",
			Paychecks:    url + "/paychecks",
			Balances:     url + "/balances",
			SavingsGoals: url + "/savings-goals",
			Bills:        url + "/bills",
			Dashboard:    url + "/dashboard",
			Analytics:    url + "/analytics",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
