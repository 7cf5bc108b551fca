package config

import (
	"os"
	"time"
)

// Config holds everything the service reads from the environment. Loaded once
// in main and handed to the packages that need it.
type Config struct {
	Port string

	MongoURI  string
	MongoDB   string
	RedisAddr string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	InstagramVerifyToken string
	InstagramAppSecret   string
	InstagramAccessToken string
	VisionAPIKey         string

	QRTokenSecret []byte
	JwtSecret     []byte

	DiscordWebhookURL string
	DefaultLocation   string

	UpstreamTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:                 getEnv("PORT", ":8080"),
		MongoURI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:              getEnv("MONGODB_DB", "erfworld"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		MinioEndpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:       os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:       os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:          getEnv("MINIO_BUCKET", "erf-assets"),
		MinioUseSSL:          os.Getenv("MINIO_USE_SSL") == "true",
		InstagramVerifyToken: os.Getenv("INSTAGRAM_VERIFY_TOKEN"),
		InstagramAppSecret:   os.Getenv("INSTAGRAM_APP_SECRET"),
		InstagramAccessToken: os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
		VisionAPIKey:         os.Getenv("GOOGLE_VISION_API_KEY"),
		QRTokenSecret:        []byte(getEnv("QR_TOKEN_SECRET", "fallback-secret-for-development")),
		JwtSecret:            []byte(getEnv("JWT_SECRET", "your_secret_key")),
		DiscordWebhookURL:    os.Getenv("DISCORD_WEBHOOK_URL"),
		DefaultLocation:      getEnv("DEFAULT_EVENT_LOCATION", "suydam"),
		UpstreamTimeout:      30 * time.Second,
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
