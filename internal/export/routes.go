package export

import (
	"pdf-to-sound-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, exportService ExportServiceAPI, logService LogServicePort, jwtSecret string) {
	exportController := &ExportController{Service: exportService, LogService: logService}

	exportGroup := r.Group("/api/tts")
	exportGroup.Use(middlewares.AuthMiddleware(jwtSecret))
	{
		exportGroup.POST("/export", exportController.Export)
		exportGroup.GET("/exports", exportController.List)
	}
}
