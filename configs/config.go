package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string

	RedisHost string
	RedisPort int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// AppBaseURL is the public address embedded in password-reset links.
	AppBaseURL string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	cfg := Config{
		Port:            envInt("PORT", 3004),
		DBHost:          envStr("DB_HOST", "localhost"),
		DBPort:          envInt("DB_PORT", 5432),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBNameTest:      os.Getenv("DB_NAME_TEST"),
		RedisHost:       envStr("REDIS_HOST", "localhost"),
		RedisPort:       envInt("REDIS_PORT", 6379),
		JWTSecret:       envStr("JWT_SECRET", "secret"),
		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		SMTPHost:        envStr("SMTP_HOST", "localhost"),
		SMTPPort:        envInt("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		AppBaseURL:      envStr("APP_BASE_URL", "http://localhost:3000"),
	}
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}
	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
