package routes

import (
	"cityfix-be/controllers"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up profile and admin management routes. Role checks live
// in the controllers via the actor resolver.
func UserRoutes(r *gin.Engine, uc *controllers.UserController, authRequired gin.HandlerFunc) {
	user := r.Group("/api/users", authRequired)
	{
		user.PATCH("/profile", uc.UpdateProfile)

		user.GET("", uc.ListUsers)
		user.PATCH("/:email/status", uc.SetUserStatus)
		user.PATCH("/:email/role", uc.SetUserRole)

		user.POST("/staff", uc.CreateStaff)
		user.GET("/staff", uc.ListStaff)
		user.PATCH("/staff/:email", uc.UpdateStaff)
		user.DELETE("/staff/:email", uc.DeleteStaff)
	}
}
