package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Allowed CORS methods and headers of the portfolio endpoint
const (
	AllowedMethods = "POST, OPTIONS"
	AllowedHeaders = "Content-Type, Authorization, apikey"
)

// CORSHeaders returns the headers attached to every portfolio response
func CORSHeaders(allowedOrigin string) map[string]string {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return map[string]string{
		"Access-Control-Allow-Origin":  allowedOrigin,
		"Access-Control-Allow-Methods": AllowedMethods,
		"Access-Control-Allow-Headers": AllowedHeaders,
		"Content-Type":                 "application/json",
	}
}

// CORS middleware for handling Cross-Origin Resource Sharing.
// Preflight requests are answered with 200 and an empty body.
func CORS(allowedOrigin string) gin.HandlerFunc {
	headers := CORSHeaders(allowedOrigin)

	return func(c *gin.Context) {
		for key, value := range headers {
			c.Header(key, value)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// ErrorHandler middleware for centralized error handling
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
		}).Error("Request error")

		// handlers that already answered keep their response
		if c.Writer.Written() {
			return
		}

		switch err.Type {
		case gin.ErrorTypeBind, gin.ErrorTypePublic:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
	}
}
