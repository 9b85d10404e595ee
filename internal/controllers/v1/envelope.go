package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/violet-vault/backend/internal/httputil"
	"github.com/violet-vault/backend/internal/ledger"
	"github.com/violet-vault/backend/internal/models"
)

// RegisterEnvelopeRoutes registers the routes for envelopes with
// the RouterGroup that is passed.
func (co Controller) RegisterEnvelopeRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsEnvelopes)
		r.GET("", co.GetEnvelopes)
		r.POST("", co.CreateEnvelope)
	}

	// Envelope with ID
	{
		r.OPTIONS("/:id", OptionsEnvelopeDetail)
		r.GET("/:id", co.GetEnvelope)
		r.PATCH("/:id", co.UpdateEnvelope)
		r.DELETE("/:id", co.DeleteEnvelope)
	}
}

type EnvelopeResponse struct {
	Data *models.Envelope `json:"data"` // Data for the envelope
	responseError
}

type EnvelopeListResponse struct {
	Data []models.Envelope `json:"data"` // List of envelopes
	responseError
}

type EnvelopeQueryFilter struct {
	Category        string `form:"category"`        // Only envelopes of this category
	IncludeArchived bool   `form:"includeArchived"` // Include archived envelopes
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Router			/v1/envelopes [options]
func OptionsEnvelopes(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Param			id	path	string	true	"ID of the envelope"
// @Router			/v1/envelopes/{id} [options]
func OptionsEnvelopeDetail(c *gin.Context) {
	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Get envelopes
// @Description	Returns a list of envelopes, ordered by category and name
// @Tags			Envelopes
// @Produce		json
// @Success		200				{object}	EnvelopeListResponse
// @Failure		400				{object}	EnvelopeListResponse
// @Failure		500				{object}	EnvelopeListResponse
// @Param			category		query		string	false	"Filter by category"
// @Param			includeArchived	query		bool	false	"Include archived envelopes"
// @Router			/v1/envelopes [get]
func (co Controller) GetEnvelopes(c *gin.Context) {
	var filter EnvelopeQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, EnvelopeListResponse{responseError: newError(err)})
		return
	}

	var envelopes []models.Envelope
	var err error
	if filter.Category != "" {
		envelopes, err = co.Query.EnvelopesByCategory(c.Request.Context(), filter.Category, filter.IncludeArchived)
	} else {
		envelopes, err = co.Query.Envelopes(c.Request.Context(), filter.IncludeArchived)
	}

	if err != nil {
		c.JSON(status(err), EnvelopeListResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, EnvelopeListResponse{Data: envelopes})
}

// @Summary		Get envelope
// @Description	Returns a specific envelope
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeResponse
// @Failure		404	{object}	EnvelopeResponse
// @Failure		500	{object}	EnvelopeResponse
// @Param			id	path		string	true	"ID of the envelope"
// @Router			/v1/envelopes/{id} [get]
func (co Controller) GetEnvelope(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, EnvelopeResponse{responseError: newError(err)})
		return
	}

	envelope, err := co.Query.Envelope(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), EnvelopeResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, EnvelopeResponse{Data: &envelope})
}

// @Summary		Create envelope
// @Description	Creates an envelope. The initial balance is taken from unassigned cash.
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		201			{object}	EnvelopeResponse
// @Failure		400			{object}	EnvelopeResponse
// @Failure		500			{object}	EnvelopeResponse
// @Param			envelope	body		ledger.NewEnvelope	true	"Envelope"
// @Router			/v1/envelopes [post]
func (co Controller) CreateEnvelope(c *gin.Context) {
	var data ledger.NewEnvelope
	if err := httputil.BindData(c, &data); err != nil {
		c.JSON(status(err), EnvelopeResponse{responseError: newError(err)})
		return
	}

	envelope, err := co.Engine.CreateEnvelope(c.Request.Context(), data)
	if err != nil {
		c.JSON(status(err), EnvelopeResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusCreated, EnvelopeResponse{Data: &envelope})
}

// @Summary		Update envelope
// @Description	Updates an envelope. Only values to be updated need to be specified. Use "archived" to archive or unarchive it.
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		200			{object}	EnvelopeResponse
// @Failure		400			{object}	EnvelopeResponse
// @Failure		404			{object}	EnvelopeResponse
// @Failure		500			{object}	EnvelopeResponse
// @Param			id			path		string					true	"ID of the envelope"
// @Param			envelope	body		ledger.EnvelopeUpdate	true	"Envelope"
// @Router			/v1/envelopes/{id} [patch]
func (co Controller) UpdateEnvelope(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, EnvelopeResponse{responseError: newError(err)})
		return
	}

	var update ledger.EnvelopeUpdate
	if err := httputil.BindData(c, &update); err != nil {
		c.JSON(status(err), EnvelopeResponse{responseError: newError(err)})
		return
	}

	envelope, err := co.Engine.UpdateEnvelope(c.Request.Context(), uri.ID, update)
	if err != nil {
		c.JSON(status(err), EnvelopeResponse{responseError: newError(err)})
		return
	}

	c.JSON(http.StatusOK, EnvelopeResponse{Data: &envelope})
}

// @Summary		Delete envelope
// @Description	Deletes an envelope. Its balance is returned to unassigned cash.
// @Tags			Envelopes
// @Success		204
// @Failure		404	{object}	EnvelopeResponse
// @Failure		500	{object}	EnvelopeResponse
// @Param			id	path		string	true	"ID of the envelope"
// @Router			/v1/envelopes/{id} [delete]
func (co Controller) DeleteEnvelope(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, EnvelopeResponse{responseError: newError(err)})
		return
	}

	err := co.Engine.DeleteEnvelope(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), EnvelopeResponse{responseError: newError(err)})
		return
	}

	c.Status(http.StatusNoContent)
}
