package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	TokenExpiryHours    int // bearer token lifetime
	LoginMaxAttempts    int // failed logins per window before 429
	LoginWindowSeconds  int
	SweepIntervalMinute int // expired-token sweep period
}

type UploadConfig struct {
	Dir      string // public directory for uploaded images
	BaseURL  string // URL prefix under which Dir is served
	MaxBytes int64
}

type RateLimitConfig struct {
	GlobalPerMinute int
	AuthPerMinute   int
}

func Load() *Config {
	// .env is optional; real environments inject variables directly
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AUTH_TOKEN_EXPIRY_HOURS", 24)
	viper.SetDefault("AUTH_LOGIN_MAX_ATTEMPTS", 5)
	viper.SetDefault("AUTH_LOGIN_WINDOW_SECONDS", 60)
	viper.SetDefault("AUTH_SWEEP_INTERVAL_MINUTES", 60)
	viper.SetDefault("UPLOAD_DIR", "public/uploads")
	viper.SetDefault("UPLOAD_BASE_URL", "/uploads")
	viper.SetDefault("UPLOAD_MAX_BYTES", 2<<20)
	viper.SetDefault("RATE_LIMIT_GLOBAL_PER_MINUTE", 60)
	viper.SetDefault("RATE_LIMIT_AUTH_PER_MINUTE", 10)

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ","),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			TokenExpiryHours:    viper.GetInt("AUTH_TOKEN_EXPIRY_HOURS"),
			LoginMaxAttempts:    viper.GetInt("AUTH_LOGIN_MAX_ATTEMPTS"),
			LoginWindowSeconds:  viper.GetInt("AUTH_LOGIN_WINDOW_SECONDS"),
			SweepIntervalMinute: viper.GetInt("AUTH_SWEEP_INTERVAL_MINUTES"),
		},
		Upload: UploadConfig{
			Dir:      viper.GetString("UPLOAD_DIR"),
			BaseURL:  viper.GetString("UPLOAD_BASE_URL"),
			MaxBytes: viper.GetInt64("UPLOAD_MAX_BYTES"),
		},
		RateLimit: RateLimitConfig{
			GlobalPerMinute: viper.GetInt("RATE_LIMIT_GLOBAL_PER_MINUTE"),
			AuthPerMinute:   viper.GetInt("RATE_LIMIT_AUTH_PER_MINUTE"),
		},
	}
}
