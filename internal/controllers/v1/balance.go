package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/balance"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/models"
)

// RegisterBalanceRoutes registers the routes for the budget balances with
// the RouterGroup that is passed.
func (co Controller) RegisterBalanceRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsBalances)
	r.GET("", co.GetBalances)

	r.OPTIONS("/distribute", OptionsBalanceAction)
	r.POST("/distribute", co.DistributeUnassignedCash)
	r.OPTIONS("/actual", OptionsBalanceAction)
	r.POST("/actual", co.SetActualBalance)
	r.OPTIONS("/recalculate", OptionsBalanceAction)
	r.POST("/recalculate", co.RecalculateBalances)
}

type BalancesResponse struct {
	Data *balance.Balances `json:"data"` // The balances of the budget
	responseError
}

type ActualBalanceEditable struct {
	Amount   decimal.Decimal `json:"amount" example:"1500"`    // The balance of the bank account
	IsManual bool            `json:"isManual" example:"true"` // Whether the balance was entered by the user
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Balances
// @Success		204
// @Router			/v1/balances [options]
func OptionsBalances(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Balances
// @Success		204
// @Router			/v1/balances/distribute [options]
// @Router			/v1/balances/actual [options]
// @Router			/v1/balances/recalculate [options]
func OptionsBalanceAction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Get balances
// @Description	Returns the actual balance, virtual balance and unassigned cash of the budget
// @Tags			Balances
// @Produce		json
// @Success		200	{object}	BalancesResponse
// @Failure		500	{object}	BalancesResponse
// @Router			/v1/balances [get]
func (co Controller) GetBalances(c *gin.Context) {
	balances, err := co.Query.Balances(c.Request.Context())
	if err != nil {
		c.JSON(status(err), BalancesResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, BalancesResponse{Data: &balances})
}

// @Summary		Distribute unassigned cash
// @Description	Moves unassigned cash into envelopes
// @Tags			Balances
// @Accept			json
// @Produce		json
// @Success		200				{object}	BalancesResponse
// @Failure		400				{object}	BalancesResponse
// @Failure		404				{object}	BalancesResponse
// @Failure		500				{object}	BalancesResponse
// @Param			distributions	body		[]models.EnvelopeAllocation	true	"Distributions"
// @Router			/v1/balances/distribute [post]
func (co Controller) DistributeUnassignedCash(c *gin.Context) {
	var distributions []models.EnvelopeAllocation
	if err := httputil.BindData(c, &distributions); err != nil {
		c.JSON(status(err), BalancesResponse{responseError: newError(err)})
		return
	}

	balances, err := co.Engine.DistributeUnassignedCash(c.Request.Context(), distributions)
	if err != nil {
		c.JSON(status(err), BalancesResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, BalancesResponse{Data: &balances})
}

// @Summary		Set actual balance
// @Description	Sets the balance of the bank account. Unassigned cash is adjusted so that the balances stay consistent.
// @Tags			Balances
// @Accept			json
// @Produce		json
// @Success		200		{object}	BalancesResponse
// @Failure		400		{object}	BalancesResponse
// @Failure		500		{object}	BalancesResponse
// @Param			balance	body		ActualBalanceEditable	true	"Actual balance"
// @Router			/v1/balances/actual [post]
func (co Controller) SetActualBalance(c *gin.Context) {
	var data ActualBalanceEditable
	if err := httputil.BindData(c, &data); err != nil {
		c.JSON(status(err), BalancesResponse{responseError: newError(err)})
		return
	}

	balances, err := co.Engine.SetActualBalance(c.Request.Context(), data.Amount, data.IsManual)
	if err != nil {
		c.JSON(status(err), BalancesResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, BalancesResponse{Data: &balances})
}

// @Summary		Recalculate balances
// @Description	Recomputes all balances from the transactions, envelopes and savings goals
// @Tags			Balances
// @Produce		json
// @Success		200	{object}	BalancesResponse
// @Failure		500	{object}	BalancesResponse
// @Router			/v1/balances/recalculate [post]
func (co Controller) RecalculateBalances(c *gin.Context) {
	balances, err := co.Engine.RecalculateBalances(c.Request.Context())
	if err != nil {
		c.JSON(status(err), BalancesResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, BalancesResponse{Data: &balances})
}
