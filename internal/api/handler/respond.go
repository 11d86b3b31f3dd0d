package handler

import (
	"errors"
	"net/http"

	"heartlink/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

// writeError maps an error kind onto a status code and a structured body.
// Raw internal errors never reach the caller.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrQuotaExceeded),
		errors.Is(err, apperr.ErrNotMatched),
		errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	default:
		h.Log.Error("request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"status": "error", "message": message})
}
