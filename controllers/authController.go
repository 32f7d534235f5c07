package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"cityfix-be/middlewares"
	"cityfix-be/models"
	"cityfix-be/stores"
	authUtils "cityfix-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// AuthController handles registration, login, logout and identity lookup.
type AuthController struct {
	users  stores.UserStore
	tokens *authUtils.JWTManager
	redis  *redis.Client
}

func NewAuthController(users stores.UserStore, tokens *authUtils.JWTManager, redisClient *redis.Client) *AuthController {
	return &AuthController{users: users, tokens: tokens, redis: redisClient}
}

// Register creates a citizen account. Registering an email that already
// exists is a no-op success, so clients can replay the call safely.
func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Photo    string `json:"photo,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Name:      input.Name,
		Email:     input.Email,
		Photo:     input.Photo,
		Password:  input.Password,
		Role:      models.RoleUser,
		Status:    models.AccountActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	created, err := ac.users.Register(ctx, &user)
	if err != nil {
		log.Println("Error inserting user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "User already registered"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"name":      user.Name,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
	})
}

// Login authenticates a citizen or staff account and returns a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var name string
	user, err := ac.users.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		if !user.ComparePassword(input.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		name = user.Name
	case errors.Is(err, stores.ErrNotFound):
		member, serr := ac.users.GetStaffByEmail(ctx, input.Email)
		if serr != nil || !member.ComparePassword(input.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		name = member.Name
	default:
		log.Println("Error looking up account:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := ac.tokens.Generate(input.Email)
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"name":  name,
		"email": input.Email,
	})
}

// Logout revokes the caller's token until it would have expired anyway.
func (ac *AuthController) Logout(c *gin.Context) {
	tokenVal, exists := c.Get("token")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	tokenString := tokenVal.(string)

	if ac.redis != nil {
		ttl := ac.tokens.RemainingTTL(tokenString)
		if ttl > 0 {
			if err := ac.redis.Set(c.Request.Context(), middlewares.DenylistPrefix+tokenString, "1", ttl).Err(); err != nil {
				log.Println("Error denylisting token:", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the resolved actor behind the caller's token.
func (ac *AuthController) Me(c *gin.Context) {
	actor, ok := resolveActor(c, ac.users)
	if !ok {
		return
	}
	if actor.Role == models.RoleUnknownActor {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":     actor.Email,
		"name":      actor.Name,
		"role":      actor.Role,
		"active":    actor.Active,
		"isPremium": actor.Premium,
	})
}
