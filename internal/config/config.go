package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL    string
	RedisURL string

	// Token signing. The secret is loaded once here and injected into the
	// token manager; nothing else reads it.
	JWTSecret string
	TokenTTL  time.Duration

	// Origin the public menu pages are served from. Menu URLs embedded in
	// QR codes are derived from this.
	PublicBaseURL  string
	AllowedOrigins []string

	AdminEmail    string
	AdminPassword string

	OTLPEndpoint string

	// Rate limits (requests per second + burst), per client IP.
	AuthRPS     float64
	AuthBurst   int
	PublicRPS   float64
	PublicBurst int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:  env,
		Port: port,

		DBURL:    dbURL,
		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 7*24*time.Hour),

		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		AllowedOrigins: splitAndTrim(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		AuthRPS:     getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		AuthBurst:   getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		PublicRPS:   getEnvFloat("RATE_LIMIT_PUBLIC_RPS", 30),
		PublicBurst: getEnvInt("RATE_LIMIT_PUBLIC_BURST", 60),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "menuhub")
	pass := getEnv("DB_PASSWORD", "menuhub")
	name := getEnv("DB_NAME", "menuhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.ParseFloat(v, 64)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
