package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	AppEnv    string
	LogMode   string
	JWTKey    string
	JWTTTL    int // hours
	SaltRound int

	StorageDriver string // sqlite, postgres, mysql, redis, memory
	DBName        string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBPort        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CatalogPath string

	CertificateGenerationLimit int

	SessionIdleTTL   int // minutes
	SessionSweepSpec string

	SendgridAPIKey string
	EmailSender    string

	TutorAPIURL string
	TutorAPIKey string
	TutorModel  string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.StorageDriver == "memory" {
		log.Println("Warning: Using in-memory storage. Progress is lost on restart.")
	}
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port:      getEnv("PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogMode:   getEnv("LOG_MODE", "development"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTL:    getEnvInt("JWT_TTL_HOURS", 24),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		DBName:        getEnv("DB_NAME", "techlearn.db"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", ""),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBPort:        getEnv("DB_PORT", "5432"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CatalogPath: getEnv("CATALOG_PATH", ""),

		CertificateGenerationLimit: getEnvInt("CERTIFICATE_GENERATION_LIMIT", 2),

		SessionIdleTTL:   getEnvInt("SESSION_IDLE_TTL_MINUTES", 120),
		SessionSweepSpec: getEnv("SESSION_SWEEP_SPEC", "@every 10m"),

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "noreply@techlearn.local"),

		TutorAPIURL: getEnv("TUTOR_API_URL", "https://api.openai.com/v1"),
		TutorAPIKey: getEnv("TUTOR_API_KEY", ""),
		TutorModel:  getEnv("TUTOR_MODEL", "gpt-4o-mini"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
