package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger emits one structured entry per request. Server errors are logged at
// error level so a scrape of the log stream surfaces them without the status
// field.
func Logger(logger *logrus.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		fields := logrus.Fields{
			"status":     param.StatusCode,
			"method":     param.Method,
			"path":       param.Path,
			"client_ip":  param.ClientIP,
			"latency_ms": param.Latency.Milliseconds(),
		}
		if param.ErrorMessage != "" {
			fields["error"] = param.ErrorMessage
		}

		entry := logger.WithFields(fields)
		if param.StatusCode >= http.StatusInternalServerError {
			entry.Error("Request completed")
		} else {
			entry.Info("Request completed")
		}
		return ""
	})
}

// Recovery converts a handler panic into the API's standard error envelope
// instead of a bare 500.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"panic":     recovered,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"client_ip": c.ClientIP(),
		}).Error("Panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Unexpected server error",
			},
		})
	})
}
