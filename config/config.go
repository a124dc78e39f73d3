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
	SaltRound int

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey      string
	JWTTTLHours int

	StorageDriver string // local, gcs
	StorageDir    string
	GCSBucket     string

	RedisURL string

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string

	MidtransServerKey  string
	MidtransProduction bool

	CORSOrigins       string
	CertificateIssuer string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "innerspark"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:      getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		StorageDir:    getEnv("STORAGE_DIR", "./uploads"),
		GCSBucket:     getEnv("GCS_BUCKET", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "noreply@innerspark.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "InnerSpark"),

		MidtransServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransProduction: getEnvBool("MIDTRANS_PRODUCTION", false),

		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		CertificateIssuer: getEnv("CERTIFICATE_ISSUER", "InnerSpark Academy"),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MidtransServerKey == "" {
		log.Println("Warning: MIDTRANS_SERVER_KEY is empty. Paid checkout is disabled.")
	}
}

// IsProduction reports whether APP_ENV selects production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}
