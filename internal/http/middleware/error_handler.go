package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/apkmarket/backend/internal/logger"
	"github.com/apkmarket/backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Статус и текст ответа определяются через apperror; детали внутренних
// ошибок остаются в логах и не уходят клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			c.JSON(apperror.HTTPStatusOf(err), gin.H{"error": apperror.ClientMessage(err)})
		}
	}
}
