package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// APIBaseURL is the address of the remote travel authority,
	// e.g. "http://localhost:5000/api".
	APIBaseURL string
	// TokenPath is the credential file location.
	TokenPath string
	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration
	// WatchCredentials enables the fsnotify watcher on the token file so
	// a long-running process notices logins/logouts from elsewhere.
	WatchCredentials bool
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIBaseURL:       os.Getenv("VOYAGE_API_URL"),
		TokenPath:        os.Getenv("VOYAGE_TOKEN_PATH"),
		HTTPTimeout:      15 * time.Second,
		WatchCredentials: os.Getenv("VOYAGE_WATCH_CREDENTIALS") == "true",
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("Required environment variable VOYAGE_API_URL is not set.")
	}

	if raw := os.Getenv("VOYAGE_HTTP_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid VOYAGE_HTTP_TIMEOUT %q: %v", raw, err)
		}
		cfg.HTTPTimeout = timeout
	}

	if cfg.TokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Could not resolve home directory for the token file: %v", err)
		}
		cfg.TokenPath = filepath.Join(home, ".voyage", "token")
	}

	return cfg
}
