package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/forms"
	"github.com/labmanager/labmanager-api/store"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondBindError reports a request body that could not be parsed or failed its binding rules
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondFormError reports a form that blocks submission; nothing was written
func respondFormError(c *gin.Context, err error) {
	var validationErr *forms.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": validationErr.Message,
				"field":   validationErr.Field,
			},
		})
		return
	}
	respondBindError(c, err)
}

// respondStoreError maps a storage failure to the error envelope. Unexpected
// errors are logged and left for the user to retry.
func respondStoreError(c *gin.Context, logger *zap.Logger, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
	default:
		logger.Error(message, zap.Error(err), zap.String("request_id", c.GetString("request_id")))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", message)
	}
}

// requireConfirmation stops an irreversible action unless ?confirm=true was sent
func requireConfirmation(c *gin.Context, prompt string) bool {
	if confirmed, _ := strconv.ParseBool(c.Query("confirm")); confirmed {
		return true
	}
	c.JSON(http.StatusPreconditionRequired, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "CONFIRMATION_REQUIRED",
			"message": prompt,
		},
	})
	return false
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid record ID")
		return 0, false
	}
	return uint(id), true
}
