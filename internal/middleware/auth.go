package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Authentication errors
var (
	ErrMissingToken = errors.New("authorization header is required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims represents JWT claims accepted by the portfolio endpoint
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// AuthService issues and validates bearer tokens
type AuthService struct {
	config *AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig) *AuthService {
	if config.TokenDuration == 0 {
		config.TokenDuration = time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "trader-portfolio-api"
	}
	return &AuthService{config: config}
}

// Enabled reports whether requests must carry a bearer token
func (a *AuthService) Enabled() bool {
	return a != nil && a.config.JWTSecret != ""
}

// GenerateToken generates a signed token for subject
func (a *AuthService) GenerateToken(subject, scope string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.config.Issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithIssuer(a.config.Issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Authorize validates the Authorization header value of a request.
// It returns nil claims when authentication is disabled.
func (a *AuthService) Authorize(authHeader string) (*Claims, error) {
	if !a.Enabled() {
		return nil, nil
	}

	tokenString, err := BearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	return a.ValidateToken(tokenString)
}

// BearerToken extracts the token from a "Bearer <token>" header value
func BearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}

	tokenParts := strings.Fields(authHeader)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return "", fmt.Errorf("%w: expected Bearer <token>", ErrInvalidToken)
	}
	return tokenParts[1], nil
}

// Authentication middleware that validates JWT tokens when a secret is configured
func Authentication(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authService.Authorize(c.GetHeader("Authorization"))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(),
				"path":  c.Request.URL.Path,
			}).Warn("Token validation failed")

			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			c.Abort()
			return
		}

		if claims != nil {
			c.Set("subject", claims.Subject)
			c.Set("claims", claims)
		}

		c.Next()
	}
}
