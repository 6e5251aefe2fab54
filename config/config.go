package config

import (
	"os"
	"strings"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port           string
	FrontendURL    string
	DatabaseURL    string
	StateSlot      string
	LocalStatePath string
}

// forceLocalEnv forces local mode regardless of credentials when set to a
// truthy value. Mostly useful in development.
const forceLocalEnv = "FORCE_LOCAL_STATE"

func Load() *Config {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		FrontendURL:    getenv("FRONTEND_URL", "http://localhost:3000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StateSlot:      getenv("STATE_SLOT", "default"),
		LocalStatePath: getenv("LOCAL_STATE_PATH", "data/hucha-state.json"),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// placeholderHints are substrings that mark a DATABASE_URL copied from a
// template and never filled in.
var placeholderHints = []string{"changeme", "your_", "your-", "example.com", "<", "xxx"}

// HasRemoteCredentials reports whether the configuration carries real remote
// store credentials. Missing or placeholder credentials select local mode at
// startup.
func (c *Config) HasRemoteCredentials() bool {
	if strings.EqualFold(os.Getenv(forceLocalEnv), "true") || os.Getenv(forceLocalEnv) == "1" {
		return false
	}
	url := strings.TrimSpace(c.DatabaseURL)
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, hint := range placeholderHints {
		if strings.Contains(lower, hint) {
			return false
		}
	}
	return true
}
