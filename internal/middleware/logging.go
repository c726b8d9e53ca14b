package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs one line per request. Only the path is logged so a token
// passed as a query parameter never reaches the log.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "-"
		}

		log.Printf("[HTTP] %s %s (%s) %s %d %v",
			c.Request.Method,
			path,
			route,
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
