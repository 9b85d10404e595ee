package healthz

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/store"
)

// Controller reports the health of the local database.
type Controller struct {
	Store *store.Store
}

func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", Options)
	r.GET("", co.Get)
}

type Response struct {
	Error string `json:"error,omitempty" example:"the local database failed to process the request"`
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/healthz [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// Get returns the health of the backend
//
//	@Summary		Get health
//	@Description	Returns the application health and, if not healthy, an error
//	@Tags			General
//	@Produce		json
//	@Success		204
//	@Failure		500	{object}	Response
//	@Router			/healthz [get]
func (co Controller) Get(c *gin.Context) {
	err := co.Store.Ping(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
