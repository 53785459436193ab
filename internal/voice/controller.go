package voice

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type VoiceController struct {
	Service VoiceServiceAPI
}

func (vc *VoiceController) GetVoices(c *gin.Context) {
	voices, err := vc.Service.GetVoices(c.Request.Context(), c.Query("language_code"))
	if err != nil {
		log.Printf("list voices: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch voices"})
		return
	}
	c.JSON(http.StatusOK, voices)
}
