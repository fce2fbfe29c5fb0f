package middleware

import (
	"net/http"

	"wardenbot/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware renders the last error attached to the request as
// a JSON body. AppError values map to their own code and HTTP status; any
// other error is reported as an opaque internal failure.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		code := errors.ErrCodeInternal
		message := "Internal server error"
		if appErr := errors.GetAppError(err); appErr != nil {
			status = appErr.HTTPStatus
			code = appErr.Code
			message = appErr.Message
		}

		logger.Errorw("request failed",
			"code", code,
			"status", status,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)

		c.JSON(status, gin.H{
			"error":   string(code),
			"message": message,
		})
	}
}

// RecoveryMiddleware turns a handler panic into a 500 response instead of
// letting it kill the connection.
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   string(errors.ErrCodeInternal),
					"message": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
