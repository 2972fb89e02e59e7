package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	RedisURL string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	SupabaseJWTSecret  string

	AssetsBucket   string
	ArtifactBucket string

	JaegerEndpoint string
}

// Load reads configuration from the environment, honoring a local .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		RedisURL:           os.Getenv("REDIS_ADDR"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseJWTSecret:  os.Getenv("SUPABASE_JWT_SECRET"),
		AssetsBucket:       getenv("ASSETS_BUCKET", "assets"),
		ArtifactBucket:     getenv("ARTIFACT_BUCKET", "tickets"),
		JaegerEndpoint:     getenv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
	}

	if cfg.SupabaseURL == "" {
		return Config{}, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return Config{}, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
