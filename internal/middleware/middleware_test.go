package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trader-portfolio-api/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.POST("/portfolio", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id": repositories.RequestIDFromContext(c.Request.Context()),
		})
	})
	router.OPTIONS("/portfolio", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})
	return router
}

func TestCORS(t *testing.T) {
	router := newRouter(CORS("https://app.example.com"))

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/portfolio", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("Expected empty body, got %q", w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Unexpected allowed origin %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); got != AllowedHeaders {
			t.Errorf("Unexpected allowed headers %q", got)
		}
	})

	t.Run("post", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/portfolio", nil))

		if got := w.Header().Get("Access-Control-Allow-Methods"); got != AllowedMethods {
			t.Errorf("Unexpected allowed methods %q", got)
		}
	})
}

func TestCORSHeadersDefaultOrigin(t *testing.T) {
	headers := CORSHeaders("")
	if headers["Access-Control-Allow-Origin"] != "*" {
		t.Errorf("Expected wildcard origin, got %q", headers["Access-Control-Allow-Origin"])
	}
	if headers["Content-Type"] != "application/json" {
		t.Errorf("Expected JSON content type, got %q", headers["Content-Type"])
	}
}

func TestRequestID(t *testing.T) {
	router := newRouter(RequestID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/portfolio", nil)
	req.Header.Set("X-Request-ID", "req-123")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}
	if w.Body.String() != `{"request_id":"req-123"}` {
		t.Errorf("Expected request id in request context, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/portfolio", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id")
	}
}

func TestAuthService(t *testing.T) {
	auth := NewAuthService(&AuthConfig{JWTSecret: "secret"})

	token, err := auth.GenerateToken("dashboard", "portfolio:read")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	claims, err := auth.Authorize("Bearer " + token)
	if err != nil {
		t.Fatalf("Authorize() failed: %v", err)
	}
	if claims.Subject != "dashboard" || claims.Scope != "portfolio:read" {
		t.Errorf("Unexpected claims %+v", claims)
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"missing header", "", ErrMissingToken},
		{"wrong scheme", "Basic abc", ErrInvalidToken},
		{"garbage token", "Bearer abc.def.ghi", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Authorize(tt.header); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(&AuthConfig{JWTSecret: "other"})
		if _, err := other.Authorize("Bearer " + token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "trader-portfolio-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}
		if _, err := auth.Authorize("Bearer " + expired); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestAuthentication(t *testing.T) {
	t.Run("disabled without secret", func(t *testing.T) {
		router := newRouter(Authentication(NewAuthService(&AuthConfig{})))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/portfolio", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects missing token", func(t *testing.T) {
		router := newRouter(Authentication(NewAuthService(&AuthConfig{JWTSecret: "secret"})))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/portfolio", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if w.Body.String() != `{"error":"Unauthorized"}` {
			t.Errorf("Unexpected body %s", w.Body.String())
		}
	})
}

func TestRateLimiter(t *testing.T) {
	router := newRouter(RateLimiter(1, 1))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/portfolio", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/portfolio", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", second.Code)
	}
}
