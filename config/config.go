package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	JWTSecret string

	// Shared access password for the session gate
	AccessPassword string

	// OpenAI estimation settings
	OpenAIAPIKey    string
	OpenAIModel     string
	EstimateTimeout time.Duration

	// Supabase saved-trips table settings
	SupabaseURL    string
	SupabaseAPIKey string
	SupabaseTable  string
	StoreTimeout   time.Duration

	// Idle sessions older than this are evicted by the cleanup job
	SessionTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		AccessPassword: getEnv("ACCESS_PASSWORD", "124412"),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		EstimateTimeout: getDurationSeconds("ESTIMATE_TIMEOUT_SECONDS", 60),

		SupabaseURL:    getEnv("SUPABASE_URL", "https://your-project.supabase.co"),
		SupabaseAPIKey: getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseTable:  getEnv("SUPABASE_TRIPS_TABLE", "saved_trips"),
		StoreTimeout:   getDurationSeconds("STORE_TIMEOUT_SECONDS", 15),

		SessionTTL: getDurationSeconds("SESSION_TTL_SECONDS", 24*60*60),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationSeconds(key string, defaultSeconds int) time.Duration {
	seconds := defaultSeconds
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			seconds = parsed
		}
	}
	return time.Duration(seconds) * time.Second
}
