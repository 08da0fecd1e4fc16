package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcwest/internal/config"
	"jcwest/internal/middleware"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret: "test-secret-key-for-auth-tests",
		Issuer: "jcwest",
	}
}

func signToken(t *testing.T, cfg config.JWTConfig, secret string, expiry time.Duration) string {
	t.Helper()
	claims := middleware.Claims{
		Email: "estimator@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "estimator",
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedRouter(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/mutate", middleware.AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": middleware.GetSubject(c)})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testJWTConfig()
	r := protectedRouter(cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/mutate", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, cfg.Secret, time.Hour))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "estimator")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	cfg := testJWTConfig()
	r := protectedRouter(cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/mutate", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	r := protectedRouter(cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/mutate", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "some-other-secret", time.Hour))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	r := protectedRouter(cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/mutate", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, cfg.Secret, -time.Hour))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	other := cfg
	other.Issuer = "someone-else"
	r := protectedRouter(cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/mutate", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+signToken(t, other, cfg.Secret, time.Hour))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
