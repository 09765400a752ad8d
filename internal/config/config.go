package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogFilePath string

	// AI provider
	AIProvider        string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
	OpenAIAPIKey      string
	OpenAIModel       string
	MaxTokens         int

	// conversation behaviour
	HandoffDelay time.Duration
	SessionTTL   time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("note: .env file not found, using system environment")
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("GO_ENV", "development"),
		LogFilePath: getEnv("LOG_FILE_PATH", "epa-coach.log"),

		AIProvider:        getEnv("AI_PROVIDER", "openrouter"),
		OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3:latest"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openrouter/auto"),
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: getEnv("OPENROUTER_APP_NAME", "epa-coach"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MaxTokens:         getEnvAsInt("AI_MAX_TOKENS", 1024),

		HandoffDelay: time.Duration(getEnvAsInt("HANDOFF_DELAY_MS", 2000)) * time.Millisecond,
		SessionTTL:   time.Duration(getEnvAsInt("SESSION_TTL_MIN", 30)) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
