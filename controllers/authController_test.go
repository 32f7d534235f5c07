package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cityfix-be/models"
	"cityfix-be/stores"
	authUtils "cityfix-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthUserStore struct {
	stores.UserStore

	existing *models.User
	inserted []*models.User
}

func (s *stubAuthUserStore) Register(ctx context.Context, user *models.User) (bool, error) {
	if s.existing != nil && s.existing.Email == user.Email {
		return false, nil
	}
	s.inserted = append(s.inserted, user)
	return true, nil
}

func (s *stubAuthUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.existing == nil || s.existing.Email != email {
		return nil, stores.ErrNotFound
	}
	return s.existing, nil
}

func (s *stubAuthUserStore) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	return nil, stores.ErrNotFound
}

func newAuthTestRouter(t *testing.T, users *stubAuthUserStore) *gin.Engine {
	t.Helper()
	tokens, err := authUtils.NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	ac := NewAuthController(users, tokens, nil)
	r.POST("/api/auth/register", ac.Register)
	r.POST("/api/auth/login", ac.Login)
	return r
}

func TestRegisterCreatesUser(t *testing.T) {
	users := &stubAuthUserStore{}
	r := newAuthTestRouter(t, users)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Cita Zen",
		"email":    "citizen@example.com",
		"password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, users.inserted, 1)
	user := users.inserted[0]
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.AccountActive, user.Status)
	assert.False(t, user.IsPremium)
	// Password must be stored hashed.
	assert.NotEqual(t, "s3cret!", user.Password)
	assert.True(t, user.ComparePassword("s3cret!"))
}

func TestRegisterReplayIsNoOp(t *testing.T) {
	users := &stubAuthUserStore{existing: &models.User{Email: "citizen@example.com"}}
	r := newAuthTestRouter(t, users)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Cita Zen",
		"email":    "citizen@example.com",
		"password": "s3cret!",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, users.inserted)
}

func TestLoginSuccessReturnsToken(t *testing.T) {
	user := &models.User{Email: "citizen@example.com", Name: "Cita Zen", Password: "s3cret!"}
	require.NoError(t, user.HashPassword())
	users := &stubAuthUserStore{existing: user}
	r := newAuthTestRouter(t, users)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "citizen@example.com",
		"password": "s3cret!",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "token")
}

func TestLoginWrongPassword(t *testing.T) {
	user := &models.User{Email: "citizen@example.com", Password: "s3cret!"}
	require.NoError(t, user.HashPassword())
	users := &stubAuthUserStore{existing: user}
	r := newAuthTestRouter(t, users)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "citizen@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownAccount(t *testing.T) {
	users := &stubAuthUserStore{}
	r := newAuthTestRouter(t, users)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
