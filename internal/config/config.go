package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OllamaURL       string
	Model           string
	Backend         string
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	OutputPath      string
	AstGrepBin      string
	LanguagesFile   string
	TimeoutSeconds  int
	AutoSlideMs     int
	TransitionSpeed string
	Scrollable      bool
	AutoAdvance     bool
	Progress        bool
	ServePort       int
	NatsURL         string
	NatsToken       string
	LogLevel        string
	LogFormat       string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		OllamaURL:       envStr("OLLAMA_API_URL", "http://localhost:11434/api/generate"),
		Model:           envStr("OLLAMA_MODEL", "qwen3:8b"),
		Backend:         envStr("WALKTHROUGH_BACKEND", "ollama"),
		OpenAIBaseURL:   envStr("OPENAI_BASE_URL", "http://localhost:11434/v1"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", "ollama"),
		OutputPath:      envStr("WALKTHROUGH_OUTPUT", "ai_ast_grep_review.qmd"),
		AstGrepBin:      envStr("AST_GREP_BIN", "sg"),
		LanguagesFile:   envStr("WALKTHROUGH_LANGUAGES", ""),
		TimeoutSeconds:  envInt("WALKTHROUGH_TIMEOUT_SECONDS", 1200),
		AutoSlideMs:     envInt("WALKTHROUGH_AUTO_SLIDE_MS", 10000),
		TransitionSpeed: envStr("WALKTHROUGH_TRANSITION", "slow"),
		Scrollable:      envBool("WALKTHROUGH_SCROLLABLE", true),
		AutoAdvance:     envBool("WALKTHROUGH_AUTO_ADVANCE", true),
		Progress:        envBool("WALKTHROUGH_PROGRESS", true),
		ServePort:       envInt("WALKTHROUGH_SERVE_PORT", 0),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogFormat:       envStr("LOG_FORMAT", "text"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
