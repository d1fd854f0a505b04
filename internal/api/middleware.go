package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mingle/internal/api/httputil"
	"mingle/pkg/jwt"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()

		c.Next()

		slog.Info("request",
			"latency", time.Since(t),
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}
}

func AuthMiddleware(tokens *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		// Browsers cannot set headers on websocket dials; accept the token as
		// a query parameter there.
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateAccessToken(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(httputil.ContextUserKey, claims.UserID)
		c.Next()
	}
}
