package export

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdf-to-sound-api/internal/audio"
	"pdf-to-sound-api/internal/logs"
	"pdf-to-sound-api/internal/middlewares"
)

type ExportController struct {
	Service    ExportServiceAPI
	LogService LogServicePort
}

func (ec *ExportController) Export(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Chunks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoAudioChunks.Error()})
		return
	}

	segments, err := audio.DecodeBase64Segments(req.Chunks)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ec.Service.Upload(c.Request.Context(), userID, req.Title, segments)
	if err != nil {
		if errors.Is(err, ErrNoAudioChunks) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("export for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export audio"})
		return
	}

	total := len(segments)
	if ec.LogService != nil {
		entry := logs.SystemLog{
			Level:       logs.LevelInfo,
			Service:     "export",
			Action:      "EXPORT_AUDIO",
			Message:     fmt.Sprintf("Audio exported : %s", res.Object),
			UserID:      &userID,
			TotalChunks: &total,
		}
		if id := middlewares.RequestIDFromContext(c); id != "" {
			entry.RequestID = &id
		}
		if err := ec.LogService.Log(entry, gin.H{"size": res.Size, "title": req.Title}); err != nil {
			log.Printf("audit log EXPORT_AUDIO: %v", err)
		}
	}

	c.JSON(http.StatusOK, res)
}

func (ec *ExportController) List(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := ec.Service.List(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list exports for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
