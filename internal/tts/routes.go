package tts

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, ttsService TtsServiceAPI, logService LogServicePort) {
	ttsController := &TtsController{Service: ttsService, LogService: logService}

	ttsGroup := r.Group("/api/tts")
	{
		ttsGroup.POST("/init", ttsController.InitGeneration)
		ttsGroup.POST("/synthesize-chunk", ttsController.SynthesizeChunk)
		ttsGroup.POST("/combine-chunks", ttsController.CombineChunks)
		ttsGroup.POST("/synthesize", ttsController.SynthesizeText)
	}
}
