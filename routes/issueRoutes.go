package routes

import (
	"cityfix-be/controllers"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue lifecycle routes.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, authRequired gin.HandlerFunc) {
	issue := r.Group("/api/issues")
	{
		issue.GET("", ic.ListPublic)
		issue.GET("/:id", ic.Get)

		issue.POST("", authRequired, ic.Create)
		issue.GET("/mine/list", authRequired, ic.ListMine)
		issue.GET("/assigned/list", authRequired, ic.ListAssigned)
		issue.PATCH("/:id", authRequired, ic.Update)
		issue.PATCH("/:id/assign", authRequired, ic.Assign)
		issue.PATCH("/:id/reject", authRequired, ic.Reject)
		issue.POST("/:id/upvote", authRequired, ic.Upvote)
		issue.DELETE("/:id", authRequired, ic.Delete)
	}
}
