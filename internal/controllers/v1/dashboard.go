package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/query"
)

// RegisterDashboardRoutes registers the routes for the dashboard with
// the RouterGroup that is passed.
func (co Controller) RegisterDashboardRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsDashboard)
	r.GET("", co.GetDashboard)
}

// RegisterAnalyticsRoutes registers the routes for analytics with
// the RouterGroup that is passed.
func (co Controller) RegisterAnalyticsRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsAnalytics)
	r.GET("", co.GetAnalytics)
}

type DashboardResponse struct {
	Data *query.Dashboard `json:"data"` // The dashboard
	responseError
}

type AnalyticsQueryFilter struct {
	query.DateRange
	IncludeTransfers bool `form:"includeTransfers"` // Include transfers between envelopes
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Dashboard
// @Success		204
// @Router			/v1/dashboard [options]
func OptionsDashboard(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get dashboard
// @Description	Returns the balances of the budget, their validation and counts of active envelopes and overdue bills
// @Tags			Dashboard
// @Produce		json
// @Success		200	{object}	DashboardResponse
// @Failure		500	{object}	DashboardResponse
// @Router			/v1/dashboard [get]
func (co Controller) GetDashboard(c *gin.Context) {
	dashboard, err := co.Query.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(status(err), DashboardResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{Data: &dashboard})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Analytics
// @Success		204
// @Router			/v1/analytics [options]
func OptionsAnalytics(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get analytics data
// @Description	Returns the transactions relevant for spending analysis, oldest first. Split transactions are represented by the transactions they were split into.
// @Tags			Analytics
// @Produce		json
// @Success		200					{object}	TransactionListResponse
// @Failure		400					{object}	TransactionListResponse
// @Failure		500					{object}	TransactionListResponse
// @Param			start				query		string	false	"Transactions at and after this time, RFC3339"
// @Param			end					query		string	false	"Transactions at and before this time, RFC3339"
// @Param			includeTransfers	query		bool	false	"Include transfers between envelopes"
// @Router			/v1/analytics [get]
func (co Controller) GetAnalytics(c *gin.Context) {
	var filter AnalyticsQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, TransactionListResponse{responseError: newError(err)})
		return
	}

	transactions, err := co.Query.AnalyticsData(c.Request.Context(), filter.DateRange, filter.IncludeTransfers)
	if err != nil {
		c.JSON(status(err), TransactionListResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: transactions})
}
