package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	GigaChat GigaChatConfig
	Upload   UploadConfig
	Session  SessionConfig
	Display  DisplayConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type UploadConfig struct {
	MaxFileSizeMB    int
	AllowedFileTypes []string
}

type SessionConfig struct {
	TTL           time.Duration
	SweepSchedule string
}

// DisplayConfig controls how monetary values inside insight text are
// rendered for the presentation layer.
type DisplayConfig struct {
	Locale   string
	Currency string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file is found, environment variables are used directly
	// (useful for Docker/K8s).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	maxFileSize, _ := strconv.Atoi(getEnv("UPLOAD_MAX_FILE_SIZE_MB", "10"))
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "60"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	allowedTypes := strings.Split(getEnv("UPLOAD_ALLOWED_FILE_TYPES", "csv,xlsx"), ",")
	for i := range allowedTypes {
		allowedTypes[i] = strings.ToLower(strings.TrimSpace(allowedTypes[i]))
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Upload: UploadConfig{
			MaxFileSizeMB:    maxFileSize,
			AllowedFileTypes: allowedTypes,
		},
		Session: SessionConfig{
			TTL:           time.Duration(sessionTTL) * time.Minute,
			SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		},
		Display: DisplayConfig{
			Locale:   getEnv("DISPLAY_LOCALE", "en-IN"),
			Currency: getEnv("DISPLAY_CURRENCY", "INR"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
