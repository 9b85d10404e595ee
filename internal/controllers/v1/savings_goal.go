package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
	"golang.org/x/exp/slices"
)

var errGoalStatusInvalid = errors.New("the status must be one of active, completed, upcoming")

// RegisterSavingsGoalRoutes registers the routes for savings goals with
// the RouterGroup that is passed.
func (co Controller) RegisterSavingsGoalRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsSavingsGoals)
		r.GET("", co.GetSavingsGoals)
		r.POST("", co.CreateSavingsGoal)
	}

	// Savings goal with ID
	{
		r.OPTIONS("/:id", OptionsSavingsGoalDetail)
		r.DELETE("/:id", co.DeleteSavingsGoal)
	}
}

type SavingsGoalResponse struct {
	Data *models.SavingsGoal `json:"data"` // Data for the savings goal
	responseError
}

type SavingsGoalListResponse struct {
	Data []models.SavingsGoal `json:"data"` // List of savings goals
	responseError
}

type SavingsGoalQueryFilter struct {
	Status string `form:"status"` // One of active, completed, upcoming. Defaults to active.
	Days   int    `form:"days"`   // Days to look ahead for upcoming deadlines. Defaults to 30.
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Savings Goals
// @Success		204
// @Router			/v1/savings-goals [options]
func OptionsSavingsGoals(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Savings Goals
// @Success		204
// @Param			id	path	string	true	"ID of the savings goal"
// @Router			/v1/savings-goals/{id} [options]
func OptionsSavingsGoalDetail(c *gin.Context) {
	httputil.OptionsDelete(c)
}

// @Summary		Get savings goals
// @Description	Returns a list of savings goals
// @Tags			Savings Goals
// @Produce		json
// @Success		200		{object}	SavingsGoalListResponse
// @Failure		400		{object}	SavingsGoalListResponse
// @Failure		500		{object}	SavingsGoalListResponse
// @Param			status	query		string	false	"One of active, completed, upcoming. Defaults to active."
// @Param			days	query		int		false	"Days to look ahead for upcoming deadlines. Defaults to 30."
// @Router			/v1/savings-goals [get]
func (co Controller) GetSavingsGoals(c *gin.Context) {
	filter := SavingsGoalQueryFilter{Status: "active", Days: 30}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, SavingsGoalListResponse{responseError: newError(err)})
		return
	}

	if !slices.Contains([]string{"active", "completed", "upcoming"}, filter.Status) {
		c.JSON(http.StatusBadRequest, SavingsGoalListResponse{responseError: newError(errGoalStatusInvalid)})
		return
	}

	var goals []models.SavingsGoal
	var err error
	switch filter.Status {
	case "completed":
		goals, err = co.Query.CompletedSavingsGoals(c.Request.Context())
	case "upcoming":
		goals, err = co.Query.UpcomingDeadlines(c.Request.Context(), filter.Days)
	default:
		goals, err = co.Query.ActiveSavingsGoals(c.Request.Context())
	}

	if err != nil {
		c.JSON(status(err), SavingsGoalListResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, SavingsGoalListResponse{Data: goals})
}

// @Summary		Create savings goal
// @Description	Creates a savings goal. Its current amount is taken from unassigned cash.
// @Tags			Savings Goals
// @Accept			json
// @Produce		json
// @Success		201		{object}	SavingsGoalResponse
// @Failure		400		{object}	SavingsGoalResponse
// @Failure		500		{object}	SavingsGoalResponse
// @Param			goal	body		ledger.NewSavingsGoal	true	"Savings goal"
// @Router			/v1/savings-goals [post]
func (co Controller) CreateSavingsGoal(c *gin.Context) {
	var data ledger.NewSavingsGoal
	if err := httputil.BindData(c, &data); err != nil {
		c.JSON(status(err), SavingsGoalResponse{responseError: newError(err)})
		return
	}

	goal, err := co.Engine.CreateSavingsGoal(c.Request.Context(), data)
	if err != nil {
		c.JSON(status(err), SavingsGoalResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusCreated, SavingsGoalResponse{Data: &goal})
}

// @Summary		Delete savings goal
// @Description	Deletes a savings goal. Its current amount is returned to unassigned cash.
// @Tags			Savings Goals
// @Success		204
// @Failure		404	{object}	SavingsGoalResponse
// @Failure		500	{object}	SavingsGoalResponse
// @Param			id	path		string	true	"ID of the savings goal"
// @Router			/v1/savings-goals/{id} [delete]
func (co Controller) DeleteSavingsGoal(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, SavingsGoalResponse{responseError: newError(err)})
		return
	}

	err := co.Engine.DeleteSavingsGoal(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), SavingsGoalResponse{responseError: newError(err)})
		return
	}

	c.Status(http.StatusNoContent)
}
