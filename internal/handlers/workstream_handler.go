package handlers

import (
	"consultgpt-pipeline/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

type WorkStreamHandler struct{}

func NewWorkStreamHandler() *WorkStreamHandler {
	return &WorkStreamHandler{}
}

// HandleList serves GET /api/workstreams.
func (handler *WorkStreamHandler) HandleList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"workstreams":   models.WorkStreams(),
		"quickStarters": models.QuickStarters,
	})
}

// HandleGet serves GET /api/workstreams/:id.
func (handler *WorkStreamHandler) HandleGet(c *gin.Context) {
	id := c.Param("id")
	workstream, ok := models.FindWorkStream(id)
	if !ok {
		respondError(c, models.NewValidationError(models.CodeWorkstreamLookup, "unknown workstream: "+id))
		return
	}
	c.JSON(http.StatusOK, workstream)
}
