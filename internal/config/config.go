package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default values applied when the corresponding environment variable is unset.
const (
	DefaultDBName                  = "smartspend"
	DefaultOpenRouterBaseURL       = "https://openrouter.ai/api/v1"
	DefaultOpenRouterTimeout       = 20 * time.Second
	DefaultEmergencyFundMultiplier = 6.0
)

// Settings holds all application configuration sourced from the environment.
// Construct it once in main and inject it; nothing reads the environment lazily.
type Settings struct {
	MongoURL string
	DBName   string
	AppTitle string

	AllowedOriginsRaw string

	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	OpenRouterTimeout time.Duration
	OpenRouterAppURL  string
	OpenRouterAppName string

	EmergencyFundMultiplier float64
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load() *Settings {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds Settings from the current process environment.
func FromEnv() *Settings {
	s := &Settings{
		MongoURL:          os.Getenv("MONGO_URL"),
		DBName:            getEnv("DB_NAME", DefaultDBName),
		AppTitle:          getEnv("APP_TITLE", "SmartSpend Backend"),
		AllowedOriginsRaw: getEnv("CORS_ORIGINS", "*"),

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   os.Getenv("OPENROUTER_MODEL"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", DefaultOpenRouterBaseURL),
		OpenRouterTimeout: DefaultOpenRouterTimeout,
		OpenRouterAppURL:  os.Getenv("OPENROUTER_APP_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),

		EmergencyFundMultiplier: DefaultEmergencyFundMultiplier,
	}

	if raw := os.Getenv("OPENROUTER_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			s.OpenRouterTimeout = time.Duration(secs) * time.Second
		}
	}

	if raw := os.Getenv("EMERGENCY_FUND_MULTIPLIER"); raw != "" {
		if mult, err := strconv.ParseFloat(raw, 64); err == nil {
			if mult < 0 {
				mult = 0
			}
			s.EmergencyFundMultiplier = mult
		}
	}

	return s
}

// getEnv returns the value of the environment variable or the default when unset or empty.
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// CORSOrigins splits the raw origins list into individual origins.
func (s *Settings) CORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(s.AllowedOriginsRaw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
