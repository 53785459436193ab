package voice

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, voiceService VoiceServiceAPI) {
	voiceController := &VoiceController{Service: voiceService}

	voiceGroup := r.Group("/api/google_voices")
	{
		voiceGroup.GET("/voices", voiceController.GetVoices)
	}
}
