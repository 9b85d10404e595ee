package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/query"
	"golang.org/x/exp/slices"
)

var errBillStatusInvalid = errors.New("the status must be one of upcoming, overdue, paid, recurring")

// RegisterBillRoutes registers the routes for bills with
// the RouterGroup that is passed.
func (co Controller) RegisterBillRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsBills)
	r.GET("", co.GetBills)
}

type BillListResponse struct {
	Data []models.Bill `json:"data"` // List of bills
	responseError
}

type BillQueryFilter struct {
	query.DateRange
	Status    string `form:"status"`    // One of upcoming, overdue, paid, recurring. Defaults to upcoming.
	Days      int    `form:"days"`      // Days to look ahead for upcoming bills. Defaults to 30.
	Frequency string `form:"frequency"` // Frequency of recurring bills
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Bills
// @Success		204
// @Router			/v1/bills [options]
func OptionsBills(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get bills
// @Description	Returns a list of bills
// @Tags			Bills
// @Produce		json
// @Success		200			{object}	BillListResponse
// @Failure		400			{object}	BillListResponse
// @Failure		500			{object}	BillListResponse
// @Param			status		query		string	false	"One of upcoming, overdue, paid, recurring. Defaults to upcoming."
// @Param			days		query		int		false	"Days to look ahead for upcoming bills. Defaults to 30."
// @Param			start		query		string	false	"Paid bills due at and after this time, RFC3339"
// @Param			end			query		string	false	"Paid bills due at and before this time, RFC3339"
// @Param			frequency	query		string	false	"Frequency of recurring bills"
// @Router			/v1/bills [get]
func (co Controller) GetBills(c *gin.Context) {
	filter := BillQueryFilter{Status: "upcoming", Days: 30}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, BillListResponse{responseError: newError(err)})
		return
	}

	if !slices.Contains([]string{"upcoming", "overdue", "paid", "recurring"}, filter.Status) {
		c.JSON(http.StatusBadRequest, BillListResponse{responseError: newError(errBillStatusInvalid)})
		return
	}

	var bills []models.Bill
	var err error
	switch filter.Status {
	case "overdue":
		bills, err = co.Query.OverdueBills(c.Request.Context())
	case "paid":
		bills, err = co.Query.PaidBills(c.Request.Context(), filter.DateRange)
	case "recurring":
		bills, err = co.Query.RecurringBills(c.Request.Context(), filter.Frequency)
	default:
		bills, err = co.Query.UpcomingBills(c.Request.Context(), filter.Days)
	}

	if err != nil {
		c.JSON(status(err), BillListResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, BillListResponse{Data: bills})
}
