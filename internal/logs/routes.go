package logs

import (
	"pdf-to-sound-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, logService *LogService, jwtSecret string) {
	logController := &LogController{LogService: logService}

	logGroup := r.Group("/api/logs")
	logGroup.Use(middlewares.AuthMiddleware(jwtSecret), middlewares.RequireRole(middlewares.RoleAdmin))
	{
		logGroup.POST("", logController.GetLogs)
	}
}
