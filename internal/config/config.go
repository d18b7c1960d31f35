package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// OpenAI-compatible model endpoint
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	// Intent prompt spec
	IntentPromptFile string
	// Database: Postgres when DB_URL is set, SQLite file otherwise
	DatabaseURL string
	SQLitePath  string
	// Conversation state retention
	SessionTTL time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:             getEnvDefault("PORT", "8080"),
		AllowedOrigin:    getEnvDefault("ALLOWED_ORIGIN", "*"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		Model:            getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		IntentPromptFile: getEnvDefault("INTENT_PROMPT_FILE", "./prompts/intent.yaml"),
		DatabaseURL:      os.Getenv("DB_URL"),
		SQLitePath:       getEnvDefault("SQLITE_PATH", "data/ledger.db"),
		SessionTTL:       time.Duration(getEnvIntDefault("SESSION_TTL_MINUTES", 30)) * time.Minute,
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; intent extraction will rely on heuristics only")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}
