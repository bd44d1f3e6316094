package middlewares

import (
	"strconv"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger records an access log line and the request metrics for
// every handled request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)

		utils.ReqCount.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		utils.ReqDuration.WithLabelValues(c.Request.Method, path).Observe(elapsed.Seconds())

		utils.Logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
