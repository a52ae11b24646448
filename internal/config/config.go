package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Dialogue tiers select which processing path the dispatcher runs.
// Tiers are cumulative: "stateful" includes AI correction, "ai" includes
// the basic keyword replies.
const (
	TierBasic    = "basic"
	TierAI       = "ai"
	TierStateful = "stateful"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// LINE messaging channel
	LineChannelSecret string
	LineAccessToken   string
	LineAPIBaseURL    string
	LineDataBaseURL   string

	// Conversation behaviour
	DialogueTier      string
	SessionTTL        time.Duration
	DedupeTTL         time.Duration
	TimeZone          string
	ClassifierTimeout time.Duration

	// Application window periods (day-of-month, inclusive)
	Period1Start   int
	Period1End     int
	Period2Start   int
	Period2End     int
	Period1Advance int
	Period2Advance int

	// Defaults for a fresh application
	DefaultSaturdayCount int

	// LLM providers
	BedrockModelID string
	GeminiAPIKey   string
	GeminiModelID  string

	// AWS (Bedrock, S3 video storage)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	VideoBucket         string

	// Automation collaborator (document generation / form submission)
	AutomationBaseURL string
	AutomationTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		LineChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),
		LineAccessToken:   getEnv("LINE_ACCESS_TOKEN", ""),
		LineAPIBaseURL:    getEnv("LINE_API_BASE_URL", "https://api.line.me"),
		LineDataBaseURL:   getEnv("LINE_DATA_BASE_URL", "https://api-data.line.me"),

		DialogueTier:      strings.ToLower(strings.TrimSpace(getEnv("DIALOGUE_TIER", TierStateful))),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		DedupeTTL:         getEnvAsDuration("DEDUPE_TTL", 24*time.Hour),
		TimeZone:          getEnv("TIMEZONE", "Asia/Taipei"),
		ClassifierTimeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", 10*time.Second),

		Period1Start:   getEnvAsInt("WINDOW_PERIOD1_START", 1),
		Period1End:     getEnvAsInt("WINDOW_PERIOD1_END", 15),
		Period2Start:   getEnvAsInt("WINDOW_PERIOD2_START", 20),
		Period2End:     getEnvAsInt("WINDOW_PERIOD2_END", 31),
		Period1Advance: getEnvAsInt("WINDOW_PERIOD1_ADVANCE_MONTHS", 1),
		Period2Advance: getEnvAsInt("WINDOW_PERIOD2_ADVANCE_MONTHS", 2),

		DefaultSaturdayCount: getEnvAsInt("DEFAULT_SATURDAY_COUNT", 3),

		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		AWSRegion:           getEnv("AWS_REGION", "ap-northeast-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		VideoBucket:         getEnv("VIDEO_BUCKET", ""),

		AutomationBaseURL: getEnv("AUTOMATION_BASE_URL", ""),
		AutomationTimeout: getEnvAsDuration("AUTOMATION_TIMEOUT", 15*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
