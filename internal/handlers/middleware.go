package handlers

import (
	"net/http"
	"time"

	"mockfolio/internal/apierr"
	"mockfolio/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("request")
	}
}

// CORS lets a UI dev server on another origin call the mock.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequireBearer checks only that Authorization has the form "Bearer <token>".
func RequireBearer(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.BearerToken(c.GetHeader("Authorization")); !ok {
			log.WithField("request_id", c.GetString(requestIDKey)).
				Warnf("%s %s: missing or malformed bearer token", c.Request.Method, c.Request.URL.Path)
			apierr.Abort(c, apierr.NotAuthenticated)
			return
		}
		c.Next()
	}
}
