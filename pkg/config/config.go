package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresHost      string
	PostgresPort      string
	PostgresUser      string
	PostgresPassword  string
	PostgresDB        string
	PostgresSSLMode   string
	MigrationsEnabled bool

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration

	TelegramToken      string
	TelegramWebhookURL string

	ServerHost    string
	ServerPort    string
	JWTSigningKey string
	LogLevel      string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using process environment")
	}

	return &Config{
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:      getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:        getEnv("POSTGRES_DB", "nutrifolio"),
		PostgresSSLMode:   getEnv("POSTGRES_SSLMODE", "disable"),
		MigrationsEnabled: getEnvBool("MIGRATIONS_ENABLED", true),

		OpenAIKey:     getEnv("OPENAI_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAITimeout: getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),

		TelegramToken:      getEnv("TELEGRAM_TOKEN", ""),
		TelegramWebhookURL: getEnv("TELEGRAM_WEBHOOK_URL", ""),

		ServerHost:    getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logrus.Warnf("Invalid boolean for %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvDuration accepts Go duration strings ("45s") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	logrus.Warnf("Invalid duration for %s=%q, using %s", key, value, defaultValue)
	return defaultValue
}
