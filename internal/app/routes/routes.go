package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nishan/applygate/internal/app/controllers"
	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	applicantController *controllers.ApplicantController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public user routes ---
	users := v1.Group("/users")
	{
		users.POST("/register", authController.Register)
		users.GET("/verify-email/:uid/:token", authController.VerifyEmail)
		users.POST("/login", authController.Login)
		users.POST("/refresh", authController.RefreshToken)
		users.POST("/forgot-password", authController.ForgotPassword)
		users.POST("/reset-password/:uid/:token", authController.ResetPassword)
	}

	// --- Authenticated user routes ---
	usersAuthenticated := users.Group("")
	usersAuthenticated.Use(authMiddleware.JWTAuth())
	{
		usersAuthenticated.GET("/me", userController.GetMe)
		usersAuthenticated.PUT("/update-profile", userController.UpdateProfile)
		usersAuthenticated.POST("/change-password", userController.ChangePassword)
	}

	// --- Applicant routes (authenticated, verified email required) ---
	applicants := v1.Group("/applicants")
	applicants.Use(authMiddleware.JWTAuth(), authMiddleware.VerifiedEmailRequired())
	{
		applicants.GET("", applicantController.List)
		applicants.POST("", applicantController.Create)

		// Registered before /:id so the literal segment wins
		applicants.GET("/analytics", applicantController.Analytics)

		applicants.GET("/:id", applicantController.GetByID)
		applicants.PUT("/:id", applicantController.Update)
		applicants.PATCH("/:id", applicantController.Update)
		applicants.DELETE("/:id", applicantController.Delete)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}
