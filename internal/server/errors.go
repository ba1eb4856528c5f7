package server

import (
	"errors"
	"net/http"

	analyticssvc "github.com/erplora/analytics/internal/analytics/service"
	settingsdomain "github.com/erplora/analytics/internal/settings/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrMissingHub     = errors.New("missing_hub")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var validation *settingsdomain.ValidationError
	if errors.As(err, &validation) {
		fields := make([]ValidationError, 0, len(validation.Fields))
		for _, f := range validation.Fields {
			fields = append(fields, ValidationError{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fields,
		}
	}

	switch {
	case errors.Is(err, ErrMissingHub),
		errors.Is(err, settingsdomain.ErrInvalidHub),
		errors.Is(err, analyticssvc.ErrInvalidHub):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_hub",
			Message: "a valid X-Hub-Id header is required",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, analyticssvc.ErrUnknownReportType):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, settingsdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, settingsdomain.ErrSaveFailed):
		return http.StatusInternalServerError, errorPayload{
			Type:    "save_failed",
			Message: "settings could not be saved",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
