package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"` // per-field validation messages
}

// SuccessResponse acknowledges a write that has no resource to return.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

// respondInternalError logs err under op and answers with a generic 500.
func respondInternalError(c *gin.Context, err error, op string) {
	log.Printf("Internal error (%s, device %q): %v", op, GetDeviceID(c), err)
	respondError(c, http.StatusInternalServerError, "internal server error")
}

// respondStoreError translates a repository error. apperr codes keep their
// client-safe message; anything else is a 500.
func respondStoreError(c *gin.Context, err error, op string) {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr) && appErr.Code != apperr.CodeInternal:
		respondError(c, appErr.HTTPStatus(), appErr.Message)
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "not found")
	default:
		respondInternalError(c, err, op)
	}
}

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, resource any) {
	c.JSON(http.StatusCreated, resource)
}

// respondAccepted answers 202 for work handed to the task queue.
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// parseIDParam reads a positive id from the path. On failure it has already
// answered 400.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := parseID(c.Param(name))
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// parseOptionalQueryID reads an id filter from the query string; absent is 0.
func parseOptionalQueryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := parseID(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}

// bindJSON decodes and validates the request body. On failure it answers 400
// with per-field messages keyed by JSON name.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		message, details := describeBindingError(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Details: details})
		return false
	}
	return true
}
