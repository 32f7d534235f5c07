package routes

import (
	"cityfix-be/controllers"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes.
func AuthRoutes(r *gin.Engine, ac *controllers.AuthController, authRequired gin.HandlerFunc) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", ac.Register)
		auth.POST("/login", ac.Login)
		auth.POST("/logout", authRequired, ac.Logout)
		auth.GET("/me", authRequired, ac.Me)
	}
}
