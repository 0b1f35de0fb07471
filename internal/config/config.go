// Package config provides application configuration.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	Port string
	Host string

	// Database settings
	DBPath string

	// Session settings
	SessionSecret string
	SessionMaxAge int // in seconds

	// Currency settings
	HomeCurrency   string
	USDTWDFallback float64 // used when no manual rate and no fetched rate is available

	// Assistant settings
	GeminiAPIKey string
	GeminiModel  string

	// GitHub mirror settings (optional; mirror is disabled without a token)
	GitHubToken  string
	GitHubRepo   string
	GitHubFile   string
	GitHubBranch string

	// Environment
	IsDevelopment bool
	DemoMode      bool
}

// New creates a new Config with values from environment variables or defaults.
// A .env file in the working directory is loaded first when present.
func New() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env file: %v", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Host:           getEnv("HOST", "localhost"),
		DBPath:         getEnv("DB_PATH", filepath.Join("data", "navigator.db")),
		SessionSecret:  getEnv("SESSION_SECRET", "change-me-in-production-please"),
		SessionMaxAge:  86400 * 7, // 7 days
		HomeCurrency:   getEnv("HOME_CURRENCY", "TWD"),
		USDTWDFallback: getEnvFloat("USD_TWD_FALLBACK", 32.5),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:     os.Getenv("GITHUB_REPO"),
		GitHubFile:     getEnv("GITHUB_FILE", "data.json"),
		GitHubBranch:   getEnv("GITHUB_BRANCH", "main"),
		IsDevelopment:  getEnv("ENV", "development") == "development",
		DemoMode:       os.Getenv("DEMO_MODE") == "true",
	}
}

// Address returns the full address to bind the server to.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// MirrorEnabled reports whether the GitHub mirror is configured.
func (c *Config) MirrorEnabled() bool {
	return c.GitHubToken != "" && c.GitHubRepo != ""
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid value for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}
