// util/http_util.go

package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/prevet-io/prevet/logging"
)

// RespondWithError logs the underlying error and sends a JSON error response
func RespondWithError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Int("status", statusCode),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(statusCode, gin.H{"error": message})
}
