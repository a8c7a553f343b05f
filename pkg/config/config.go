package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// LLM
	LLMProvider         string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenRouterAPIKey    string
	OpenRouterBase      string
	OpenRouterAppTitle  string
	OpenRouterReferer   string
	GeminiAPIKey        string
	AdviceModel         string
	ClassifierModel     string
	AdviceMaxTokens     int
	ClassifierMaxTokens int

	// Job search provider (RapidAPI JSearch)
	JobAPIKey      string
	JobAPIHost     string
	JobAPIBaseURL  string
	JobResultLimit int
	SalaryRadius   int

	ProviderTimeout time.Duration

	// Conversation snapshots
	StoreBackend string
	BoltPath     string
	DatabaseURL  string

	RedisURL string
	CacheTTL time.Duration

	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	IntentsFile      string
	MaxMessageTokens int
}

// Load reads environment variables, optionally from .env files if present.
func Load(envFiles ...string) Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load(envFiles...)

	cfg := Config{
		Port:      getEnv("PORT", "5000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),

		LLMProvider:         strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		OpenRouterAPIKey:    os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBase:      os.Getenv("OPENROUTER_BASE_URL"),
		OpenRouterAppTitle:  getEnv("OPENROUTER_APP_TITLE", "CareerAssist"),
		OpenRouterReferer:   os.Getenv("OPENROUTER_REFERER"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		AdviceModel:         getEnv("ADVICE_MODEL", "gpt-4-turbo"),
		ClassifierModel:     getEnv("CLASSIFIER_MODEL", "gpt-3.5-turbo"),
		AdviceMaxTokens:     getEnvInt("ADVICE_MAX_TOKENS", 1000),
		ClassifierMaxTokens: getEnvInt("CLASSIFIER_MAX_TOKENS", 10),

		JobAPIKey:      os.Getenv("JOB_API_KEY"),
		JobAPIHost:     getEnv("JOB_API_HOST", "jsearch.p.rapidapi.com"),
		JobAPIBaseURL:  getEnv("JOB_API_BASE_URL", "https://jsearch.p.rapidapi.com"),
		JobResultLimit: getEnvInt("JOB_RESULT_LIMIT", 5),
		SalaryRadius:   getEnvInt("SALARY_RADIUS", 100),

		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "memory")),
		BoltPath:     getEnv("BOLT_PATH", "data/conversations.bolt"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		RedisURL: os.Getenv("REDIS_URL"),
		CacheTTL: time.Duration(getEnvInt("CACHE_TTL_MINUTES", 60)) * time.Minute,

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnv("JWT_ISSUER", "careerassist"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),

		IntentsFile:      os.Getenv("INTENTS_FILE"),
		MaxMessageTokens: getEnvInt("MAX_MESSAGE_TOKENS", 0),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
