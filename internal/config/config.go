package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBPath     string

	// Model artifact locations. Both files are required before the first
	// scoring call; a missing file is a deployment defect, not a transient one.
	ModelPath        string
	ModelColumnsPath string

	// DataDir is the root of the local object store. Incoming CSV snapshots
	// land under inbox/, finished files move to processed/ or error/.
	DataDir      string
	WatchEnabled bool

	StagingBatchSize int

	Notify NotifyConfig
}

type NotifyConfig struct {
	Mode string // webhook, smtp or noop

	WebhookEndpoint string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTo       string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "churnscope"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "churnscope"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),
		DBPath:     getenv("DATABASE_PATH", "churnscope.db"),

		ModelPath:        getenv("MODEL_PATH", "model/churn_model.json"),
		ModelColumnsPath: getenv("MODEL_COLUMNS_PATH", "model/model_columns.json"),

		DataDir:      getenv("DATA_DIR", "data"),
		WatchEnabled: getenvBool("WATCH_ENABLED", true),

		StagingBatchSize: getenvInt("STAGING_BATCH_SIZE", 5000),

		Notify: NotifyConfig{
			Mode:            strings.ToLower(getenv("NOTIFY_MODE", "noop")),
			WebhookEndpoint: strings.TrimSpace(getenv("NOTIFY_WEBHOOK_ENDPOINT", "")),
			SMTPHost:        getenv("NOTIFY_SMTP_HOST", ""),
			SMTPPort:        getenvInt("NOTIFY_SMTP_PORT", 587),
			SMTPUsername:    getenv("NOTIFY_SMTP_USERNAME", ""),
			SMTPPassword:    getenv("NOTIFY_SMTP_PASSWORD", ""),
			SMTPFrom:        getenv("NOTIFY_SMTP_FROM", ""),
			SMTPTo:          getenv("NOTIFY_SMTP_TO", ""),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
