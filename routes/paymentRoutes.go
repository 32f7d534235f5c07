package routes

import (
	"cityfix-be/controllers"

	"github.com/gin-gonic/gin"
)

// PaymentRoutes sets up checkout-session and confirmation routes.
// Confirmation endpoints are unauthenticated: they carry only a session id
// and the workflow trusts the gateway's session record, not the caller.
func PaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, authRequired gin.HandlerFunc) {
	payment := r.Group("/api/payments")
	{
		payment.GET("/mine", authRequired, pc.ListMine)
		payment.POST("/boost/:issueId", authRequired, pc.CreateBoostSession)
		payment.GET("/boost/confirm", pc.ConfirmBoost)
		payment.POST("/subscription", authRequired, pc.CreateSubscriptionSession)
		payment.GET("/subscription/confirm", pc.ConfirmSubscription)
	}
}
