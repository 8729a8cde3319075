package middlewares

import (
	"net/http"

	"github.com/fsdevblog/placement-billing/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AlertFunc вызывается один раз, когда клиент достигает лимита неудачных попыток.
type AlertFunc func(clientIP string, failures int64)

// AuthFailures считает ответы 401/403 по IP клиента в скользящем окне. При достижении лимита пишет
// предупреждение безопасности, а пока счетчик не ниже лимита, отвечает 429 без обработки запроса.
// Недоступность хранилища счетчиков запросы не блокирует.
func AuthFailures(window ratelimit.Window, limit int64, l *logrus.Logger, alerts ...AlertFunc) gin.HandlerFunc {
	entry := l.WithField("component", "auth_failures")
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ctx := c.Request.Context()

		count, err := window.Count(ctx, ip)
		if err != nil {
			entry.WithError(err).Error("read auth failures counter")
		} else if count >= limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: statusErrorText(http.StatusTooManyRequests),
			})
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status != http.StatusUnauthorized && status != http.StatusForbidden {
			return
		}
		failures, err := window.Hit(ctx, ip)
		if err != nil {
			entry.WithError(err).Error("register auth failure")
			return
		}
		if failures == limit {
			entry.WithFields(logrus.Fields{
				"client_ip": ip,
				"failures":  failures,
				"path":      c.Request.URL.Path,
			}).Warn("security alert: authentication failure limit reached")
			for _, alert := range alerts {
				alert(ip, failures)
			}
		}
	}
}
