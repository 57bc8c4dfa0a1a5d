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
	JWTKey    string
	SaltRound int

	LogLevel  string
	LogFormat string // console or json

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // overrides the discrete DB_* values when set

	StorageDriver string // local, s3 or oss
	UploadDir     string
	PublicBaseURL string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	OSSEndpoint   string
	OSSAccessKey  string
	OSSSecretKey  string
	OSSBucket     string
	OSSPublicBase string

	RendererURL     string // empty means render PDFs in process
	RendererTimeout int    // seconds

	MailDriver     string // smtp, sendgrid or none
	EmailSender    string
	Password       string // SMTP Password
	SMTPHost       string
	SMTPPort       string
	SendGridAPIKey string

	CertificateRetryCron string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lms"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "/uploads"),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3UseSSL:    getEnvBool("S3_USE_SSL", true),

		OSSEndpoint:   getEnv("OSS_ENDPOINT", ""),
		OSSAccessKey:  getEnv("OSS_ACCESS_KEY", ""),
		OSSSecretKey:  getEnv("OSS_SECRET_KEY", ""),
		OSSBucket:     getEnv("OSS_BUCKET", ""),
		OSSPublicBase: getEnv("OSS_PUBLIC_BASE", ""),

		RendererURL:     getEnv("RENDERER_URL", ""),
		RendererTimeout: getEnvInt("RENDERER_TIMEOUT_SECONDS", 15),

		MailDriver:     strings.ToLower(getEnv("MAIL_DRIVER", "smtp")),
		EmailSender:    getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:       getEnv("PASSWORD", "defaultSecret"),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		CertificateRetryCron: getEnv("CERTIFICATE_RETRY_CRON", "*/15 * * * *"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MailDriver == "smtp" && AppConfig.EmailSender == "defaultSecret" {
		log.Println("Warning: EMAIL_SENDER is not set. Certificate e-mails will fail.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
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
