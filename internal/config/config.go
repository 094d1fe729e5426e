package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Persistence
	DatabasePath string

	// Twitter API credentials
	TwitterBearerToken string

	// Sentiment classifier
	SentimentModel string

	// Analysis limits
	MaxTweetsPerAnalysis int
	MaxConcurrentJobs    int

	// Fetch retry policy
	FetchMaxRetries       int
	FetchBaseDelaySeconds int
	FetchMaxDelaySeconds  int
	MinTextLength         int

	// Retention of terminal job records
	RetentionDays     int
	RetentionSchedule string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Azure Storage result archive
	StorageAccount   string
	StorageContainer string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabasePath: getEnv("DATABASE_PATH", "data/topicpulse.db"),

		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),

		SentimentModel: getEnv("SENTIMENT_MODEL", "lexicon-basic-v1"),

		MaxTweetsPerAnalysis: getIntEnv("MAX_TWEETS_PER_ANALYSIS", 1000),
		MaxConcurrentJobs:    getIntEnv("MAX_CONCURRENT_JOBS", 4),

		FetchMaxRetries:       getIntEnv("FETCH_MAX_RETRIES", 3),
		FetchBaseDelaySeconds: getIntEnv("FETCH_BASE_DELAY_SECONDS", 60),
		FetchMaxDelaySeconds:  getIntEnv("FETCH_MAX_DELAY_SECONDS", 900),
		MinTextLength:         getIntEnv("MIN_TEXT_LENGTH", 10),

		RetentionDays:     getIntEnv("RETENTION_DAYS", 30),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "0 0 3 * * *"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "results"),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TwitterBearerToken == "" {
		return fmt.Errorf("TWITTER_BEARER_TOKEN is required")
	}

	if c.MaxTweetsPerAnalysis < 1 {
		return fmt.Errorf("MAX_TWEETS_PER_ANALYSIS must be a positive integer")
	}

	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be a positive integer")
	}

	if c.FetchMaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must not be negative")
	}

	if c.FetchBaseDelaySeconds > c.FetchMaxDelaySeconds {
		return fmt.Errorf("FETCH_BASE_DELAY_SECONDS must not exceed FETCH_MAX_DELAY_SECONDS")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
