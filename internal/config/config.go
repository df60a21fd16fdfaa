package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort      string  // Application port
	DBUser       string  // Database user
	DBPassword   string  // Database password
	DBHost       string  // Database host
	DBPort       string  // Database port
	DBName       string  // Database name
	JWTSecret    string  // JWT secret key
	RedisAddr    string  // Redis server address
	RedisPass    string  // Redis password
	RedisDB      int     // Redis database number
	SMTPHost     string  // SMTP server host
	SMTPPort     int     // SMTP server port
	SMTPUser     string  // SMTP username
	SMTPPass     string  // SMTP password
	MailFrom     string  // Sender address for outbound mail
	RewardAmount float64 // Fixed reward per qualifying referral
	BaseURL      string  // Public base URL consent links point at
	Locale       string  // Locale for outbound mail templates
	IsProd       bool    // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "465"))
	reward, err := strconv.ParseFloat(os.Getenv("REWARD_AMOUNT"), 64)
	if err != nil || reward <= 0 {
		reward = 25 // Default reward per qualifying registration
	}
	return &Config{
		AppPort:      getEnv("APP_PORT", "8080"),             // Application port
		DBUser:       os.Getenv("DB_USER"),                   // Database user
		DBPassword:   os.Getenv("DB_PASSWORD"),               // Database password
		DBHost:       getEnv("DB_HOST", "localhost"),         // Database host
		DBPort:       getEnv("DB_PORT", "3306"),              // Database port
		DBName:       os.Getenv("DB_NAME"),                   // Database name
		JWTSecret:    os.Getenv("JWT_SECRET"),                // JWT secret key
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"), // Redis server address
		RedisPass:    os.Getenv("REDIS_PASS"),                // Redis password
		RedisDB:      redisDB,                                // Redis database number
		SMTPHost:     os.Getenv("SMTP_HOST"),                 // SMTP server host
		SMTPPort:     smtpPort,                               // SMTP server port
		SMTPUser:     os.Getenv("SMTP_USER"),                 // SMTP username
		SMTPPass:     os.Getenv("SMTP_PASS"),                 // SMTP password
		MailFrom:     os.Getenv("MAIL_FROM"),                 // Sender address
		RewardAmount: reward,                                 // Reward amount
		BaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"), // Public base URL
		Locale:       getEnv("MAIL_LOCALE", "en"),            // Mail template locale
		IsProd:       os.Getenv("IS_PROD") == "true",         // Is production environment
	}
}

// getEnv returns the environment variable value or a default if unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
