package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port string
	Env  string // "development", "production"

	// Database
	DatabaseURL string

	// CORS
	AllowedOrigins []string

	// Notification engine
	Cooldown time.Duration // minimum gap between non-system notifications

	// Scheduler
	SchedulerEnabled bool
	ActiveUserID     string // user the recurring timers target
	ReminderHour     int    // local hour for the daily reminder
	TipHour          int    // local hour for periodic saving tips
	TipIntervalDays  int    // days between saving tips

	// Nightly maintenance
	RefreshEnabled  bool
	RefreshSchedule string // cron expression for the streak refresh job

	// Web Push
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string // mailto:email or URL
}

func Load() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/savestreak?sslmode=disable"),

		// CORS
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		// Notification engine
		Cooldown: getDurationEnv("NOTIFICATION_COOLDOWN", 30*time.Minute),

		// Scheduler
		SchedulerEnabled: getBoolEnv("SCHEDULER_ENABLED", true),
		ActiveUserID:     os.Getenv("ACTIVE_USER_ID"),
		ReminderHour:     getIntEnv("REMINDER_HOUR", 20),
		TipHour:          getIntEnv("TIP_HOUR", 10),
		TipIntervalDays:  getIntEnv("TIP_INTERVAL_DAYS", 3),

		// Nightly maintenance
		RefreshEnabled:  getBoolEnv("REFRESH_ENABLED", true),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "15 0 * * *"), // nightly at 00:15

		// Web Push
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:notifications@savestreak.app"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
