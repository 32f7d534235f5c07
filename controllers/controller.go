package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"cityfix-be/middlewares"
	"cityfix-be/models"
	"cityfix-be/stores"

	"github.com/gin-gonic/gin"
)

// requestContext bounds every store call the way the rest of the service
// does: a fresh 10 second deadline per operation.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// requireEmail pulls the verified email set by the auth middleware.
func requireEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(middlewares.EmailKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return email.(string), true
}

// resolveActor classifies the request's verified email. Unknown actors are
// passed through; each handler decides whether unknown is acceptable.
func resolveActor(c *gin.Context, users stores.UserStore) (models.Actor, bool) {
	email, ok := requireEmail(c)
	if !ok {
		return models.Actor{}, false
	}

	ctx, cancel := requestContext()
	defer cancel()

	actor, err := users.Resolve(ctx, email)
	if err != nil {
		log.Println("Error resolving actor:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return models.Actor{}, false
	}
	return actor, true
}

// respondStoreError maps store outcomes onto HTTP statuses. Unexpected
// errors are logged and reported generically.
func respondStoreError(c *gin.Context, err error, invalidMsg, notFoundMsg, conflictMsg string) {
	switch {
	case errors.Is(err, stores.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
	case errors.Is(err, stores.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, stores.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflictMsg})
	default:
		log.Println("Storage error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
