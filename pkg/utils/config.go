package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultJWTSecret = "supersecretkey"

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
	// Required turns on the bearer gate for the data routes.
	Required bool
}

type ServerConfig struct {
	HTTPAddr    string
	FeedAddr    string
	GRPCAddr    string
	CORSOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func LoadAuthConfig() AuthConfig {
	hours := 168
	if raw := os.Getenv("BOOKSHELF_JWT_TTL_HOURS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			hours = n
		}
	}

	return AuthConfig{
		// dev default; override in any real deployment
		JWTSecret:   getEnv("BOOKSHELF_JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:   getEnv("BOOKSHELF_JWT_ISSUER", "bookshelf"),
		JWTDuration: time.Duration(hours) * time.Hour,
		Required:    getBool("BOOKSHELF_AUTH_REQUIRED", false),
	}
}

func LoadServerConfig() ServerConfig {
	var origins []string
	for _, o := range strings.Split(getEnv("BOOKSHELF_CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	feedAddr, ok := os.LookupEnv("BOOKSHELF_FEED_ADDR")
	if !ok {
		feedAddr = ":7070"
	}

	grpcAddr, ok := os.LookupEnv("BOOKSHELF_GRPC_ADDR")
	if !ok {
		grpcAddr = ":9090"
	}

	return ServerConfig{
		HTTPAddr:    getEnv("BOOKSHELF_HTTP_ADDR", ":8080"),
		FeedAddr:    strings.TrimSpace(feedAddr),
		GRPCAddr:    strings.TrimSpace(grpcAddr),
		CORSOrigins: origins,
	}
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnv("BOOKSHELF_LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnv("BOOKSHELF_LOG_FORMAT", "text")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
