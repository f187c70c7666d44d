// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Auth providers
const (
	AuthJWT    = "jwt"
	AuthGoogle = "google"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppName    string
	AppVersion string
	LogLevel   string

	// Server
	Port            string
	GinMode         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// Document store
	StoreDriver   string
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Reference catalog (optional)
	PostgresDSN string

	// Response cache
	RedisURL string
	CacheTTL time.Duration

	// Auth
	AuthProvider   string
	JWTSecret      string
	JWTIssuer      string
	GoogleClientID string
	AdminEmails    []string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string

	// S3
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3URLExpiry time.Duration

	// Jobs
	JobsEnabled            bool
	NotificationSchedule   string
	ExpirySchedule         string
	NotificationBatchSize  int
	NotificationStaleAfter time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppName:    getEnv("APP_NAME", "travel-booking-service"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "release"),
		ReadTimeout:     time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout:    time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", nil),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "travel"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getEnvAsDuration("CACHE_TTL", 5*time.Minute),

		AuthProvider:   strings.ToLower(getEnv("AUTH_PROVIDER", AuthJWT)),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "travel-booking-service"),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		AdminEmails:    getEnvAsSlice("ADMIN_EMAILS", nil),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "ap-southeast-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3URLExpiry: getEnvAsDuration("S3_URL_EXPIRY", 15*time.Minute),

		JobsEnabled:            getEnvAsBool("JOBS_ENABLED", true),
		NotificationSchedule:   getEnv("NOTIFICATION_SCHEDULE", "@every 30s"),
		ExpirySchedule:         getEnv("EXPIRY_SCHEDULE", "0 * * * *"),
		NotificationBatchSize:  getEnvAsInt("NOTIFICATION_BATCH_SIZE", 50),
		NotificationStaleAfter: getEnvAsDuration("NOTIFICATION_STALE_AFTER", 10*time.Minute),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings that cannot work together
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			return fmt.Errorf("MONGODB_DSN and MONGO_DB are required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthProvider {
	case AuthJWT:
		if len(c.JWTSecret) < 16 {
			return fmt.Errorf("JWT_SECRET must be at least 16 characters")
		}
	case AuthGoogle:
		if c.GoogleClientID == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID is required for google auth")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	gmail := []string{c.GmailClientID, c.GmailClientSecret, c.GmailRefreshToken}
	set := 0
	for _, v := range gmail {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(gmail) {
		return fmt.Errorf("GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN must be set together")
	}

	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}
	if c.NotificationBatchSize <= 0 {
		return fmt.Errorf("NOTIFICATION_BATCH_SIZE must be positive")
	}
	return nil
}

// GmailEnabled reports whether outbound email goes through Gmail
func (c *Config) GmailEnabled() bool {
	return c.GmailRefreshToken != ""
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
