package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/query"
)

// RegisterPaycheckRoutes registers the routes for paychecks with
// the RouterGroup that is passed.
func (co Controller) RegisterPaycheckRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsPaychecks)
		r.GET("", co.GetPaychecks)
		r.POST("", co.CreatePaycheck)
	}

	// Paycheck with ID
	{
		r.OPTIONS("/:id", OptionsPaycheckDetail)
		r.GET("/:id", co.GetPaycheck)
		r.DELETE("/:id", co.DeletePaycheck)
	}
}

type PaycheckResponse struct {
	Data *models.PaycheckHistory `json:"data"` // Data for the paycheck
	responseError
}

type PaycheckListResponse struct {
	Data []models.PaycheckHistory `json:"data"` // List of paychecks
	responseError
}

type PaycheckQueryFilter struct {
	query.DateRange
	Source string `form:"source"` // Only paychecks from this payer
	Limit  int    `form:"limit"`  // Maximum number of paychecks. Defaults to 50.
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Paychecks
// @Success		204
// @Router			/v1/paychecks [options]
func OptionsPaychecks(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Paychecks
// @Success		204
// @Param			id	path	string	true	"ID of the paycheck"
// @Router			/v1/paychecks/{id} [options]
func OptionsPaycheckDetail(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// @Summary		Get paychecks
// @Description	Returns the paycheck history, newest first
// @Tags			Paychecks
// @Produce		json
// @Success		200		{object}	PaycheckListResponse
// @Failure		400		{object}	PaycheckListResponse
// @Failure		500		{object}	PaycheckListResponse
// @Param			start	query		string	false	"Paychecks at and after this time, RFC3339"
// @Param			end		query		string	false	"Paychecks at and before this time, RFC3339"
// @Param			source	query		string	false	"Filter by payer. Ignores the date range and limit."
// @Param			limit	query		int		false	"Maximum number of paychecks. Defaults to 50."
// @Router			/v1/paychecks [get]
func (co Controller) GetPaychecks(c *gin.Context) {
	filter := PaycheckQueryFilter{Limit: 50}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, PaycheckListResponse{responseError: newError(err)})
		return
	}

	var paychecks []models.PaycheckHistory
	var err error
	switch {
	case filter.Source != "":
		paychecks, err = co.Query.PaychecksBySource(c.Request.Context(), filter.Source)
	case !filter.Start.IsZero() || !filter.End.IsZero():
		paychecks, err = co.Query.PaychecksByDateRange(c.Request.Context(), filter.DateRange)
	default:
		paychecks, err = co.Query.PaycheckHistory(c.Request.Context(), filter.Limit)
	}

	if err != nil {
		c.JSON(status(err), PaycheckListResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, PaycheckListResponse{Data: paychecks})
}

// @Summary		Get paycheck
// @Description	Returns a specific paycheck
// @Tags			Paychecks
// @Produce		json
// @Success		200	{object}	PaycheckResponse
// @Failure		404	{object}	PaycheckResponse
// @Failure		500	{object}	PaycheckResponse
// @Param			id	path		string	true	"ID of the paycheck"
// @Router			/v1/paychecks/{id} [get]
func (co Controller) GetPaycheck(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, PaycheckResponse{responseError: newError(err)})
		return
	}

	paycheck, err := co.Query.Paycheck(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), PaycheckResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, PaycheckResponse{Data: &paycheck})
}

// @Summary		Process paycheck
// @Description	Processes a paycheck. In "allocate" mode, the allocations are added to their envelopes and the rest to unassigned cash. In "leftover" mode, everything goes to unassigned cash.
// @Tags			Paychecks
// @Accept			json
// @Produce		json
// @Success		201			{object}	PaycheckResponse
// @Failure		400			{object}	PaycheckResponse
// @Failure		404			{object}	PaycheckResponse
// @Failure		500			{object}	PaycheckResponse
// @Param			paycheck	body		ledger.Paycheck	true	"Paycheck"
// @Router			/v1/paychecks [post]
func (co Controller) CreatePaycheck(c *gin.Context) {
	var data ledger.Paycheck
	if err := httputil.BindData(c, &data); err != nil {
		c.JSON(status(err), PaycheckResponse{responseError: newError(err)})
		return
	}

	paycheck, err := co.Engine.ProcessPaycheck(c.Request.Context(), data)
	if err != nil {
		c.JSON(status(err), PaycheckResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusCreated, PaycheckResponse{Data: &paycheck})
}

// @Summary		Delete paycheck
// @Description	Deletes a paycheck and reverses its effect on the balances
// @Tags			Paychecks
// @Success		204
// @Failure		404	{object}	PaycheckResponse
// @Failure		500	{object}	PaycheckResponse
// @Param			id	path		string	true	"ID of the paycheck"
// @Router			/v1/paychecks/{id} [delete]
func (co Controller) DeletePaycheck(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, PaycheckResponse{responseError: newError(err)})
		return
	}

	err := co.Engine.DeletePaycheck(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), PaycheckResponse{responseError: newError(err)})
		return
	}

	c.Status(http.StatusNoContent)
}
