package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	AIGatewayURL string // Base URL of the OpenAI-compatible LLM gateway
	AIGatewayKey string // API key sent to the LLM gateway
	AIModel      string // Model requested from the LLM gateway
	AIDailyQuota int    // Generations allowed per user per day, 0 disables the quota
	AIRatePerMin int    // Sustained AI requests per user per minute
	AIRateBurst  int    // Burst size for AI requests per user

	PublicRatePerMin int // Marketplace requests per caller per minute
	PublicRateBurst  int // Burst size for marketplace requests
}

// ClientConfig holds what the command line client needs
type ClientConfig struct {
	APIURL string // Base URL of the growth_hub server
	Token  string // Bearer token issued by the login endpoint
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),     // Application port
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     getEnv("DB_HOST", "127.0.0.1"), // Database host
		DBPort:     getEnv("DB_PORT", "3306"),      // Database port
		DBName:     os.Getenv("DB_NAME"),           // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:    redisDB,                        // Redis database number
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment

		AIGatewayURL: getEnv("AI_GATEWAY_URL", "https://api.openai.com/v1"),
		AIGatewayKey: os.Getenv("AI_GATEWAY_KEY"),
		AIModel:      getEnv("AI_MODEL", "gpt-4o-mini"),
		AIDailyQuota: getEnvInt("AI_DAILY_QUOTA", 50), // Generations per user per day
		AIRatePerMin: getEnvInt("AI_RATE_PER_MIN", 10),
		AIRateBurst:  getEnvInt("AI_RATE_BURST", 3),

		PublicRatePerMin: getEnvInt("PUBLIC_RATE_PER_MIN", 120),
		PublicRateBurst:  getEnvInt("PUBLIC_RATE_BURST", 30),
	}
}

// LoadClientConfig loads the command line client settings
func LoadClientConfig() *ClientConfig {
	_ = godotenv.Load() // Load .env file if present
	return &ClientConfig{
		APIURL: getEnv("GROWTH_API_URL", "http://localhost:8080"),
		Token:  os.Getenv("GROWTH_TOKEN"),
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable or a fallback when it is unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the variable as an int or a fallback when unset or invalid
func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
