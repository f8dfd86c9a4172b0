package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse lists messages per offending field.
type ValidationResponse struct {
	Errors map[string][]string `json:"errors"`
}

// ErrorHandler turns the last error a handler attached with c.Error into a
// JSON response. Handlers that already wrote a response are left alone.
func ErrorHandler(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := Classify(err)
		if status >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err,
			)
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// Classify maps a service error to its status code and response body.
func Classify(err error) (int, interface{}) {
	var verr *service.ValidationError
	var nferr *service.NotFoundError
	var cerr *service.ConflictError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ValidationResponse{Errors: verr.Fields}
	case errors.As(err, &nferr):
		return http.StatusNotFound, ErrorResponse{Error: nferr.Error()}
	case errors.As(err, &cerr):
		return http.StatusConflict, ErrorResponse{Error: cerr.Error()}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: service.ErrForbidden.Error()}
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Error: errors.Cause(err).Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, ValidationResponse{Errors: map[string][]string{
			"non_field_errors": {service.ErrInvalidCredentials.Error()},
		}}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}
}
