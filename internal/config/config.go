package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the process-level configuration. Everything operator-editable
// (API root, tokens, channel ids, announcement templates) lives in the
// persisted settings file instead, see internal/session.
type Config struct {
	AppEnv           string
	Debug            bool
	Version          string
	SentryDSN        string
	MongoDBURI       string
	MongoDBDatabase  string
	DefaultLanguage  string
	ClientSecretFile string
	TokenFile        string
	SettingsFile     string
	ScriptID         string
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Debug:            debug,
		Version:          getEnv("VERSION", "dev"),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		MongoDBURI:       getEnv("MONGODB_URI", ""),
		MongoDBDatabase:  getEnv("MONGODB_DATABASE", "reqpanel"),
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "en"),
		ClientSecretFile: getEnv("GOOGLE_CLIENT_SECRET_FILE", "client_secret.json"),
		TokenFile:        getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		SettingsFile:     getEnv("SETTINGS_FILE", defaultSettingsPath()),
		ScriptID:         getEnv("APPS_SCRIPT_ID", ""),
	}

	if cfg.ScriptID == "" {
		return nil, fmt.Errorf("APPS_SCRIPT_ID is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}
	if cfg.MongoDBURI == "" {
		log.Println("Warning: MONGODB_URI is not set. Decision log disabled.")
	}

	return cfg, nil
}

// defaultSettingsPath puts the settings file under the user config dir, where
// a desktop app would keep it.
func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.json"
	}
	return filepath.Join(dir, "RequestPanel", "settings.json")
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
