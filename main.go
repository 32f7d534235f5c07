package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"cityfix-be/config"
	"cityfix-be/controllers"
	"cityfix-be/middlewares"
	"cityfix-be/models"
	"cityfix-be/payments"
	"cityfix-be/routes"
	"cityfix-be/stores"
	authUtils "cityfix-be/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	client, db, err := config.ConnectDB(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	log.Println("MongoDB connection established successfully!")

	redisClient, err := config.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	paymentsCollection := db.Collection("payments")
	if err := models.EnsurePaymentIndex(paymentsCollection); err != nil {
		log.Fatalf("Failed to create payment index: %v", err)
	}

	usersCollection := db.Collection("users")
	staffCollection := db.Collection("staff")
	if err := models.EnsureUserIndex(usersCollection); err != nil {
		log.Fatalf("Failed to create user index: %v", err)
	}
	if err := models.EnsureUserIndex(staffCollection); err != nil {
		log.Fatalf("Failed to create staff index: %v", err)
	}

	issueStore := stores.NewIssueStore(db.Collection("issues"))
	userStore := stores.NewUserStore(usersCollection, staffCollection)
	paymentStore := stores.NewPaymentStore(paymentsCollection)
	dashboardStore := stores.NewDashboardStore(db.Collection("issues"), paymentsCollection, usersCollection)

	tokens, err := authUtils.NewJWTManager(cfg.JWTSecret, 72*time.Hour)
	if err != nil {
		log.Fatalf("Failed to set up token manager: %v", err)
	}

	gateway := payments.NewStripeGateway(cfg.StripeBaseURL, cfg.StripeSecretKey)
	workflow := payments.NewWorkflow(gateway, issueStore, userStore, paymentStore)

	authController := controllers.NewAuthController(userStore, tokens, redisClient)
	issueController := controllers.NewIssueController(issueStore, userStore)
	paymentController := controllers.NewPaymentController(cfg, gateway, workflow, issueStore, userStore, paymentStore)
	userController := controllers.NewUserController(userStore)
	dashboardController := controllers.NewDashboardController(dashboardStore, userStore)

	authRequired := middlewares.AuthMiddleware(tokens, redisClient)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r, authController, authRequired)
	routes.IssueRoutes(r, issueController, authRequired)
	routes.PaymentRoutes(r, paymentController, authRequired)
	routes.UserRoutes(r, userController, authRequired)
	routes.DashboardRoutes(r, dashboardController, authRequired)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
