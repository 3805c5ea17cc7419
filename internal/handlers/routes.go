package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"trader-portfolio-api/internal/middleware"
)

// HealthChecker reports whether the warehouse can be reached
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	PortfolioHandler *PortfolioHandler
	AuthService      *middleware.AuthService
	Health           HealthChecker
	AllowedOrigin    string
	RateLimitRPS     float64
	RateLimitBurst   int
	Logger           *logrus.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", healthHandler(config.Health))

	portfolio := router.Group("")
	portfolio.Use(middleware.CORS(config.AllowedOrigin))
	portfolio.Use(middleware.Authentication(config.AuthService))
	{
		// Same path as the API Gateway deployment
		portfolio.POST("/fetch-trader-port", config.PortfolioHandler.GetPortfolio)
		portfolio.OPTIONS("/fetch-trader-port", func(c *gin.Context) {})

		portfolio.POST("/api/v1/portfolio", config.PortfolioHandler.GetPortfolio)
		portfolio.OPTIONS("/api/v1/portfolio", func(c *gin.Context) {})
	}

	// Other methods on a known path get the same 405 as the Lambda path
	corsHeaders := middleware.CORSHeaders(config.AllowedOrigin)
	router.NoMethod(func(c *gin.Context) {
		for key, value := range corsHeaders {
			c.Header(key, value)
		}
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method Not Allowed"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found"})
	})
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router.Use(gin.Recovery())

	// Request ID
	router.Use(middleware.RequestID())

	// Security headers
	router.Use(middleware.SecurityHeaders())

	// Request size limit
	router.Use(middleware.RequestSizeLimit(middleware.MaxBodySize))

	// Rate limiting
	router.Use(middleware.RateLimiter(config.RateLimitRPS, config.RateLimitBurst))

	// Structured logging
	router.Use(middleware.StructuredLogger(logger))

	// Slow request logging
	router.Use(middleware.PerformanceMonitor(logger, 5*time.Second))

	// Error handling
	router.Use(middleware.ErrorHandler(logger))
}

// NewRouter builds a gin engine serving the portfolio API
func NewRouter(config *RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	SetupMiddleware(router, config)
	SetupRoutes(router, config)
	return router
}

func healthHandler(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()

			if err := checker.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "trader-portfolio-api",
					"error":   err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "trader-portfolio-api",
			"version": "1.0.0",
		})
	}
}
