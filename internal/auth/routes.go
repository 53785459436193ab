package auth

import (
	"pdf-to-sound-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, authService AuthServicePort, logService LogServicePort, jwtSecret string, secureCookie bool) {
	authController := &AuthController{AuthService: authService, LS: logService, SecureCookie: secureCookie}

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authController.Register)
		authGroup.POST("/login", authController.Login)
		authGroup.POST("/logout", authController.Logout)
	}

	protected := r.Group("/api/auth")
	protected.Use(middlewares.AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authController.Me)
	}
}
