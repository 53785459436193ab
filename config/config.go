package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// DBDriver is "postgres", "sqlite" or empty (audit log disabled).
	DBDriver   string `env:"DB_DRIVER"`
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBPath     string `env:"DB_PATH" envDefault:"tts.db"`

	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"true"`

	GoogleCredentialsFile string        `env:"GOOGLE_CREDENTIALS_FILE"`
	GCSBucket             string        `env:"GCS_BUCKET"`
	SignedURLTTL          time.Duration `env:"SIGNED_URL_TTL" envDefault:"1h"`

	MaxChunkLength       int           `env:"MAX_CHUNK_LENGTH" envDefault:"1000"`
	TTSRequestsPerSecond float64       `env:"TTS_REQUESTS_PER_SECOND" envDefault:"10"`
	TTSBurst             int           `env:"TTS_BURST" envDefault:"10"`
	TTSMaxConcurrency    int           `env:"TTS_MAX_CONCURRENCY" envDefault:"4"`
	ChunkCacheSize       int           `env:"CHUNK_CACHE_SIZE" envDefault:"128"`
	VoicesCacheTTL       time.Duration `env:"VOICES_CACHE_TTL" envDefault:"1h"`
}

// LoadConfig reads .env (if present) and the process environment. A value
// that fails to parse keeps its default; every other field is still loaded.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := defaults()
	if err := env.Parse(&cfg); err != nil {
		log.Printf("config: %v; falling back to defaults for unparsable values", err)
	}
	return cfg
}

// PostgresDSN builds the connection string for gorm.io/driver/postgres.
func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable"
}

func defaults() Config {
	var cfg Config
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}
