package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	email string
	err   error
}

func (s *stubVerifier) Verify(token string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.email, nil
}

func newAuthRouter(verifier *stubVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(verifier, nil), func(c *gin.Context) {
		email, _ := c.Get(EmailKey)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return r
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{email: "user@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{err: fmt.Errorf("invalid token")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{email: "user@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user@example.com")
}

func TestAuthMiddlewareBareToken(t *testing.T) {
	// Tokens without the Bearer prefix are accepted as-is.
	r := newAuthRouter(&stubVerifier{email: "user@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "good-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
