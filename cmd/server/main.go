package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"pdf-to-sound-api/config"
	"pdf-to-sound-api/internal/auth"
	"pdf-to-sound-api/internal/database"
	"pdf-to-sound-api/internal/export"
	"pdf-to-sound-api/internal/logs"
	"pdf-to-sound-api/internal/metrics"
	"pdf-to-sound-api/internal/middlewares"
	"pdf-to-sound-api/internal/speech"
	"pdf-to-sound-api/internal/tts"
	"pdf-to-sound-api/internal/util"
	"pdf-to-sound-api/internal/voice"
)

func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}))
	r.Use(middlewares.RequestID())

	metrics.Register(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// audit log is optional; without a database entries are dropped
	var auditLog tts.LogServicePort = logs.NopLogService{}
	db, err := database.Open(cfg, &logs.SystemLog{}, &auth.User{})
	switch {
	case errors.Is(err, database.ErrNoDatabase):
		log.Println("DB_DRIVER not set; audit log disabled")
	case err != nil:
		log.Fatal("Failed to connect to database:", err)
	default:
		logService := &logs.LogService{DB: db}
		auditLog = logService
		logs.RegisterRoutes(r, logService, cfg.JWTSecret)

		authService := &auth.AuthService{DB: db, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.AccessTokenTTL}
		auth.RegisterRoutes(r, authService, logService, cfg.JWTSecret, cfg.CookieSecure)
	}

	clientOpts, err := util.GoogleClientOptions(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		log.Fatal("Failed to load Google credentials:", err)
	}

	provider, err := speech.NewGoogleProvider(ctx, speech.Options{
		RequestsPerSecond: cfg.TTSRequestsPerSecond,
		Burst:             cfg.TTSBurst,
		ClientOptions:     clientOpts,
	})
	if err != nil {
		log.Fatal("Failed to create text-to-speech client:", err)
	}
	defer provider.Close()

	ttsService := tts.NewTtsService(provider, cfg.MaxChunkLength, cfg.ChunkCacheSize, cfg.TTSMaxConcurrency)
	tts.RegisterRoutes(r, ttsService, auditLog)

	voiceService := voice.NewVoiceService(provider, cfg.VoicesCacheTTL)
	voice.RegisterRoutes(r, voiceService)

	if cfg.GCSBucket != "" {
		exportService, err := export.NewExportService(ctx, cfg.GCSBucket, cfg.SignedURLTTL, clientOpts...)
		if err != nil {
			log.Fatal("Failed to create storage client:", err)
		}
		defer exportService.Close()
		export.RegisterRoutes(r, exportService, auditLog, cfg.JWTSecret)
	} else {
		log.Println("GCS_BUCKET not set; audio export disabled")
	}

	// --- Cloud Run expects plain HTTP, on $PORT, bind to 0.0.0.0 ---
	log.Printf("Starting server on 0.0.0.0:%s ...", cfg.Port)
	log.Fatal(r.Run("0.0.0.0:" + cfg.Port))
}
