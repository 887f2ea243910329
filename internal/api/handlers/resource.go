package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deptsite/deptcms/internal/api/response"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/pkg/apperror"
)

// ResourceHandler serves the routes of one resource. Which optional routes
// exist follows the resource definition.
type ResourceHandler struct {
	records *record.Service
	def     *schema.ResourceDefinition
	// noun is the lower-case label used in messages ("gallery image")
	noun string
}

func NewResourceHandler(records *record.Service, def *schema.ResourceDefinition) *ResourceHandler {
	return &ResourceHandler{records: records, def: def, noun: strings.ToLower(def.DisplayName())}
}

type idURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Register mounts the resource's routes on g, which is rooted at
// /api/<resource>.
func (h *ResourceHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	if h.def.Featured != nil {
		g.GET("/featured", h.Featured)
	}
	if h.def.Upcoming != nil {
		g.GET("/upcoming", h.Upcoming)
	}
	if h.def.CategoryField != "" {
		g.GET("/category/:category", h.ByCategory)
	}
	if len(h.def.GroupBy) > 0 {
		g.GET("/grouped", h.Grouped)
	}
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	if h.def.HardDelete {
		g.DELETE("/:id/permanent", h.PermanentDelete)
	}
	if h.def.LikeCounter != "" {
		g.POST("/:id/like", h.Like)
	}
	if h.def.ViewCounter != "" {
		g.POST("/:id/view", h.View)
	}
}

func (h *ResourceHandler) List(c *gin.Context) {
	records, err := h.records.List(c.Request.Context(), h.def.Name, queryParams(c))
	if err != nil {
		response.Error(c, err, "fetching "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.List(records, len(records)))
}

func (h *ResourceHandler) Featured(c *gin.Context) {
	records, err := h.records.Featured(c.Request.Context(), h.def.Name)
	if err != nil {
		response.Error(c, err, "fetching featured "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.List(records, len(records)))
}

func (h *ResourceHandler) Upcoming(c *gin.Context) {
	records, err := h.records.Upcoming(c.Request.Context(), h.def.Name)
	if err != nil {
		response.Error(c, err, "fetching upcoming "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.List(records, len(records)))
}

func (h *ResourceHandler) ByCategory(c *gin.Context) {
	records, err := h.records.ByCategory(c.Request.Context(), h.def.Name, c.Param("category"))
	if err != nil {
		response.Error(c, err, "fetching "+h.noun+" by category")
		return
	}
	response.JSON(c, http.StatusOK, response.List(records, len(records)))
}

func (h *ResourceHandler) Grouped(c *gin.Context) {
	groups, err := h.records.Grouped(c.Request.Context(), h.def.Name)
	if err != nil {
		response.Error(c, err, "fetching grouped "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.OK(groups))
}

// Get returns one record regardless of its active flag. Resources with a
// view counter count the fetch as a view.
func (h *ResourceHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var (
		rec *record.Record
		err error
	)
	if h.def.ViewCounter != "" {
		rec, err = h.records.View(c.Request.Context(), h.def.Name, id)
	} else {
		rec, err = h.records.Get(c.Request.Context(), h.def.Name, id)
	}
	if err != nil {
		response.Error(c, err, "fetching "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.OK(rec))
}

func (h *ResourceHandler) Create(c *gin.Context) {
	body, ok := h.bindBody(c)
	if !ok {
		return
	}

	rec, err := h.records.Create(c.Request.Context(), h.def.Name, body)
	if err != nil {
		response.Error(c, err, "creating "+h.noun)
		return
	}
	response.JSON(c, http.StatusCreated, response.Message(h.def.DisplayName()+" created successfully", rec))
}

func (h *ResourceHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	body, ok := h.bindBody(c)
	if !ok {
		return
	}

	rec, err := h.records.Update(c.Request.Context(), h.def.Name, id, body)
	if err != nil {
		response.Error(c, err, "updating "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.Message(h.def.DisplayName()+" updated successfully", rec))
}

// Delete is a soft delete.
func (h *ResourceHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	rec, err := h.records.SoftDelete(c.Request.Context(), h.def.Name, id)
	if err != nil {
		response.Error(c, err, "deleting "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.Message(h.def.DisplayName()+" deleted successfully", rec))
}

func (h *ResourceHandler) PermanentDelete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.records.HardDelete(c.Request.Context(), h.def.Name, id); err != nil {
		response.Error(c, err, "deleting "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.Message(h.def.DisplayName()+" permanently deleted", nil))
}

func (h *ResourceHandler) Like(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	rec, err := h.records.Like(c.Request.Context(), h.def.Name, id)
	if err != nil {
		response.Error(c, err, "liking "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.OK(rec))
}

func (h *ResourceHandler) View(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	rec, err := h.records.View(c.Request.Context(), h.def.Name, id)
	if err != nil {
		response.Error(c, err, "recording view for "+h.noun)
		return
	}
	response.JSON(c, http.StatusOK, response.OK(rec))
}

func (h *ResourceHandler) bindID(c *gin.Context) (string, bool) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrInvalidID, "reading id")
		return "", false
	}
	return uri.ID, true
}

// bindBody decodes a JSON object. An empty body is an empty object so
// that create reports the missing required fields.
func (h *ResourceHandler) bindBody(c *gin.Context) (map[string]any, bool) {
	body := map[string]any{}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.JSON(c, http.StatusBadRequest, response.Envelope{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		c.Abort()
		return nil, false
	}
	return body, true
}

// queryParams keeps the first value of each query key.
func queryParams(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}
