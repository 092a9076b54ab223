package main

import (
	"log"
	"time"

	"accounts-be/internal/config"
	"accounts-be/internal/controllers"
	"accounts-be/internal/database"
	"accounts-be/internal/jwt"
	"accounts-be/internal/mailer"
	"accounts-be/internal/middleware"
	"accounts-be/internal/repository"
	"accounts-be/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Connect to MongoDB
	db, err := database.NewConnection(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Disconnect(db); err != nil {
			log.Printf("Failed to disconnect from database: %v", err)
		}
	}()

	// Initialize repository
	userRepo := repository.NewUserRepository(db.Collection(database.UsersCollection))

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize mailer
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.EmailFrom)

	// Initialize service and controller
	accountService := service.NewAccountService(userRepo, jwtService, smtpMailer, cfg.FrontendURL)
	accountController := controllers.NewAccountController(accountService)

	// Create a Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Public routes
	router.POST("/register", accountController.Register)
	router.GET("/verify-email", accountController.VerifyEmail)
	router.POST("/login", accountController.Login)
	router.POST("/forget-password", accountController.ForgetPassword)
	router.POST("/reset-password", accountController.ResetPassword)

	// Protected routes - require a valid session token
	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/profile", accountController.GetProfile)
		protected.PUT("/profile", accountController.UpdateProfile)
		protected.DELETE("/profile", accountController.DeleteProfile)
	}

	// Start the server
	log.Printf("Server starting on http://localhost:%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
