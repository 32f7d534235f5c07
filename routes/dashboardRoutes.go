package routes

import (
	"cityfix-be/controllers"

	"github.com/gin-gonic/gin"
)

// DashboardRoutes sets up the role-scoped summary routes.
func DashboardRoutes(r *gin.Engine, dc *controllers.DashboardController, authRequired gin.HandlerFunc) {
	dashboard := r.Group("/api/dashboard", authRequired)
	{
		dashboard.GET("/citizen", dc.Citizen)
		dashboard.GET("/staff", dc.Staff)
		dashboard.GET("/admin", dc.Admin)
	}
}
