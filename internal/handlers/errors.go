package handlers

import (
	"consultgpt-pipeline/internal/models"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError renders the shared error shape: "error" summarizes what
// failed, "details" carries the underlying cause, "message" is safe to show
// to the end user.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		body := gin.H{
			"error":   appErr.Code,
			"message": appErr.Message,
		}
		if details := appErr.Details(); details != "" {
			body["details"] = details
		}
		c.JSON(appErr.HTTPStatus(), body)
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal error",
		"details": err.Error(),
		"message": "Something went wrong. Please try again.",
	})
}
