package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/query"
	"github.com/violet-vault/backend/internal/split"
	"golang.org/x/exp/slices"
)

var errTransactionTypeInvalid = errors.New("the specified transaction type is invalid")

var transactionTypes = []models.TransactionType{models.TypeIncome, models.TypeExpense, models.TypeTransfer}

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTransactions)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransaction)
	}

	{
		r.OPTIONS("/recent", OptionsRecentTransactions)
		r.GET("/recent", co.GetRecentTransactions)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.GET("/:id", co.GetTransaction)
		r.PATCH("/:id", co.UpdateTransaction)
		r.DELETE("/:id", co.DeleteTransaction)

		r.OPTIONS("/:id/split", OptionsTransactionAction)
		r.POST("/:id/split", co.SplitTransaction)
		r.OPTIONS("/:id/reconcile", OptionsTransactionAction)
		r.POST("/:id/reconcile", co.ReconcileTransaction)
	}
}

type TransactionResponse struct {
	Data *models.Transaction `json:"data"` // Data for the transaction
	responseError
}

type TransactionListResponse struct {
	Data []models.Transaction `json:"data"` // List of transactions
	responseError
}

type Split struct {
	Parent   models.Transaction   `json:"parent"`   // The transaction that was split. It keeps its record but has no balance effect.
	Children []models.Transaction `json:"children"` // The transactions it was split into
}

type SplitResponse struct {
	Data *Split `json:"data"`
	responseError
}

type RecentQueryFilter struct {
	Days  int `form:"days"`  // Number of days to look back. Defaults to 30.
	Limit int `form:"limit"` // Maximum number of transactions. Defaults to 10.
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactions(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/recent [options]
func OptionsRecentTransactions(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Param			id	path	string	true	"ID of the transaction"
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Param			id	path	string	true	"ID of the transaction"
// @Router			/v1/transactions/{id}/split [options]
// @Router			/v1/transactions/{id}/reconcile [options]
func OptionsTransactionAction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Get transactions
// @Description	Returns a list of transactions, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200			{object}	TransactionListResponse
// @Failure		400			{object}	TransactionListResponse
// @Failure		500			{object}	TransactionListResponse
// @Param			start		query		string	false	"Transactions at and after this time, RFC3339"
// @Param			end			query		string	false	"Transactions at and before this time, RFC3339"
// @Param			envelope	query		string	false	"Filter by envelope ID"
// @Param			category	query		string	false	"Filter by category"
// @Param			type		query		string	false	"Filter by type. One of income, expense, transfer"
// @Param			reconciled	query		bool	false	"Filter by reconciliation state"
// @Router			/v1/transactions [get]
func (co Controller) GetTransactions(c *gin.Context) {
	var filter query.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, TransactionListResponse{responseError: newError(err)})
		return
	}

	if filter.Type != "" && !slices.Contains(transactionTypes, filter.Type) {
		c.JSON(http.StatusBadRequest, TransactionListResponse{responseError: newError(errTransactionTypeInvalid)})
		return
	}

	transactions, err := co.Query.Transactions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(status(err), TransactionListResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: transactions})
}

// @Summary		Get recent transactions
// @Description	Returns the most recent transactions, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200		{object}	TransactionListResponse
// @Failure		400		{object}	TransactionListResponse
// @Failure		500		{object}	TransactionListResponse
// @Param			days	query		int	false	"Number of days to look back. Defaults to 30."
// @Param			limit	query		int	false	"Maximum number of transactions. Defaults to 10."
// @Router			/v1/transactions/recent [get]
func (co Controller) GetRecentTransactions(c *gin.Context) {
	filter := RecentQueryFilter{Days: 30, Limit: 10}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, TransactionListResponse{responseError: newError(err)})
		return
	}

	transactions, err := co.Query.RecentTransactions(c.Request.Context(), filter.Days, filter.Limit)
	if err != nil {
		c.JSON(status(err), TransactionListResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: transactions})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Failure		500	{object}	TransactionResponse
// @Param			id	path		string	true	"ID of the transaction"
// @Router			/v1/transactions/{id} [get]
func (co Controller) GetTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, TransactionResponse{responseError: newError(err)})
		return
	}

	transaction, err := co.Query.Transaction(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), TransactionResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: &transaction})
}

// @Summary		Create transaction
// @Description	Creates a transaction and applies it to its envelope. The sign of the amount follows the type, which is inferred from the sign if not set.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Failure		500			{object}	TransactionResponse
// @Param			transaction	body		models.Transaction	true	"Transaction"
// @Router			/v1/transactions [post]
func (co Controller) CreateTransaction(c *gin.Context) {
	var data models.Transaction
	if err := httputil.BindData(c, &data); err != nil {
		c.JSON(status(err), TransactionResponse{responseError: newError(err)})
		return
	}

	transaction, err := co.Engine.AddTransaction(c.Request.Context(), data)
	if err != nil {
		c.JSON(status(err), TransactionResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Data: &transaction})
}

// @Summary		Update transaction
// @Description	Updates an existing transaction. Only values to be updated need to be specified. The balance effect of the old values is reversed and the new one applied.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Failure		500			{object}	TransactionResponse
// @Param			id			path		string						true	"ID of the transaction"
// @Param			transaction	body		ledger.TransactionUpdate	true	"Transaction"
// @Router			/v1/transactions/{id} [patch]
func (co Controller) UpdateTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, TransactionResponse{responseError: newError(err)})
		return
	}

	var update ledger.TransactionUpdate
	if err := httputil.BindData(c, &update); err != nil {
		c.JSON(status(err), TransactionResponse{responseError: newError(err)})
		return
	}

	transaction, err := co.Engine.UpdateTransaction(c.Request.Context(), uri.ID, update)
	if err != nil {
		c.JSON(status(err), TransactionResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: &transaction})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction and reverses its balance effect. Deleting a transaction that does not exist succeeds.
// @Tags			Transactions
// @Success		204
// @Failure		500	{object}	TransactionResponse
// @Param			id	path		string	true	"ID of the transaction"
// @Router			/v1/transactions/{id} [delete]
func (co Controller) DeleteTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, TransactionResponse{responseError: newError(err)})
		return
	}

	err := co.Engine.DeleteTransaction(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), TransactionResponse{responseError: newError(err)})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Split transaction
// @Description	Splits a transaction into new transactions. The split amounts must add up to the amount of the transaction.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201		{object}	SplitResponse
// @Failure		400		{object}	SplitResponse
// @Failure		404		{object}	SplitResponse
// @Failure		500		{object}	SplitResponse
// @Param			id		path		string				true	"ID of the transaction"
// @Param			splits	body		[]split.Allocation	true	"Splits"
// @Router			/v1/transactions/{id}/split [post]
func (co Controller) SplitTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, SplitResponse{responseError: newError(err)})
		return
	}

	var allocations []split.Allocation
	if err := httputil.BindData(c, &allocations); err != nil {
		c.JSON(status(err), SplitResponse{responseError: newError(err)})
		return
	}

	parent, children, err := co.Engine.SplitTransaction(c.Request.Context(), uri.ID, allocations)
	if err != nil {
		c.JSON(status(err), SplitResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusCreated, SplitResponse{Data: &Split{Parent: parent, Children: children}})
}

// @Summary		Reconcile transaction
// @Description	Marks a transaction as reconciled with the bank statement
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Failure		500	{object}	TransactionResponse
// @Param			id	path		string	true	"ID of the transaction"
// @Router			/v1/transactions/{id}/reconcile [post]
func (co Controller) ReconcileTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, TransactionResponse{responseError: newError(err)})
		return
	}

	transaction, err := co.Engine.ReconcileTransaction(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), TransactionResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: &transaction})
}
