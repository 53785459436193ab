package tts

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"pdf-to-sound-api/internal/audio"
	"pdf-to-sound-api/internal/chunker"
	"pdf-to-sound-api/internal/logs"
	"pdf-to-sound-api/internal/middlewares"
	"pdf-to-sound-api/internal/speech"
)

const (
	audioContentType = "audio/mp3"
	maxSegmentBytes  = 32 << 20
)

type TtsController struct {
	Service    TtsServiceAPI
	LogService LogServicePort
}

func (tc *TtsController) InitGeneration(c *gin.Context) {
	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := tc.Service.InitGeneration(req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tc.audit(c, logs.SystemLog{
		Level:        logs.LevelInfo,
		Action:       "INIT_GENERATION",
		Message:      fmt.Sprintf("Text split into %d chunks", total),
		TotalChunks:  &total,
		ChunkLengths: logs.ChunkLengths(tc.Service.ChunkLengths(req.Text)),
	}, nil)

	c.JSON(http.StatusOK, gin.H{"totalChunks": total})
}

func (tc *TtsController) SynthesizeChunk(c *gin.Context) {
	var req SynthesizeChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validateVoice(req.LanguageCode, req.VoiceName); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if req.ChunkIndex == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chunk index is required"})
		return
	}

	lang, voice := strings.TrimSpace(req.LanguageCode), strings.TrimSpace(req.VoiceName)
	entry := logs.SystemLog{
		Action:       "SYNTHESIZE_CHUNK",
		LanguageCode: &lang,
		VoiceName:    &voice,
		ChunkIndex:   req.ChunkIndex,
	}

	data, err := tc.Service.SynthesizeChunk(c.Request.Context(), req.Text, *req.ChunkIndex, lang, voice)
	if err != nil {
		status := statusFor(err)
		entry.Level = logs.LevelError
		if status < http.StatusInternalServerError {
			entry.Level = logs.LevelWarn
		}
		entry.Message = fmt.Sprintf("Chunk %d failed: %v", *req.ChunkIndex, err)
		tc.audit(c, entry, nil)

		if status >= http.StatusInternalServerError {
			log.Printf("synthesize chunk %d: %v", *req.ChunkIndex, err)
			c.JSON(status, gin.H{"error": "Failed to synthesize chunk"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	entry.Level = logs.LevelInfo
	entry.Message = fmt.Sprintf("Chunk %d synthesized", *req.ChunkIndex)
	tc.audit(c, entry, gin.H{"bytes": len(data)})

	c.Data(http.StatusOK, audioContentType, data)
}

func (tc *TtsController) CombineChunks(c *gin.Context) {
	segments, err := readSegments(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	combined, err := tc.Service.CombineChunks(segments)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	total := len(segments)
	tc.audit(c, logs.SystemLog{
		Level:       logs.LevelInfo,
		Action:      "COMBINE_CHUNKS",
		Message:     fmt.Sprintf("Combined %d chunks", total),
		TotalChunks: &total,
	}, gin.H{"bytes": len(combined)})

	c.Data(http.StatusOK, audioContentType, combined)
}

func (tc *TtsController) SynthesizeText(c *gin.Context) {
	var req SynthesizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateVoice(req.LanguageCode, req.VoiceName); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	lang, voice := strings.TrimSpace(req.LanguageCode), strings.TrimSpace(req.VoiceName)
	entry := logs.SystemLog{
		Action:       "SYNTHESIZE_TEXT",
		LanguageCode: &lang,
		VoiceName:    &voice,
	}

	data, err := tc.Service.SynthesizeText(c.Request.Context(), req.Text, lang, voice)
	if err != nil {
		status := statusFor(err)
		entry.Level = logs.LevelError
		entry.Message = fmt.Sprintf("Synthesis failed: %v", err)
		tc.audit(c, entry, nil)

		if status >= http.StatusInternalServerError {
			log.Printf("synthesize text: %v", err)
			c.JSON(status, gin.H{"error": "Failed to synthesize text"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	entry.Level = logs.LevelInfo
	entry.Message = "Text synthesized"
	entry.ChunkLengths = logs.ChunkLengths(tc.Service.ChunkLengths(req.Text))
	tc.audit(c, entry, gin.H{"bytes": len(data)})

	c.Data(http.StatusOK, audioContentType, data)
}

func validateVoice(languageCode, voiceName string) string {
	if strings.TrimSpace(languageCode) == "" {
		return "Language code is required"
	}
	if strings.TrimSpace(voiceName) == "" {
		return "Voice name is required"
	}
	if _, err := language.Parse(strings.TrimSpace(languageCode)); err != nil {
		return "Invalid language code"
	}
	return ""
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chunker.ErrIndexOutOfRange),
		errors.Is(err, ErrNoAudioChunks),
		errors.Is(err, ErrEmptyText),
		errors.Is(err, speech.ErrInvalidVoice):
		return http.StatusBadRequest
	case errors.Is(err, speech.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// readSegments accepts JSON {"chunks": [base64...]} or multipart files named "chunks".
func readSegments(c *gin.Context) ([][]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		files := form.File["chunks"]
		if len(files) == 0 {
			return nil, ErrNoAudioChunks
		}

		segments := make([][]byte, 0, len(files))
		for i, fh := range files {
			if fh.Size > maxSegmentBytes {
				return nil, fmt.Errorf("chunk %d: too large", i)
			}
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("chunk %d: %w", i, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("chunk %d: %w", i, err)
			}
			segments = append(segments, data)
		}
		return segments, nil
	}

	var req CombineChunksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	if len(req.Chunks) == 0 {
		return nil, ErrNoAudioChunks
	}
	return audio.DecodeBase64Segments(req.Chunks)
}

func (tc *TtsController) audit(c *gin.Context, entry logs.SystemLog, metadata any) {
	if tc.LogService == nil {
		return
	}
	entry.Service = "tts"
	if id := middlewares.RequestIDFromContext(c); id != "" {
		entry.RequestID = &id
	}
	if err := tc.LogService.Log(entry, metadata); err != nil {
		log.Printf("audit log %s: %v", entry.Action, err)
	}
}
