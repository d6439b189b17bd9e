package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"project-echo-be/pkg/llm/factory"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Keys   APIKeys
	Ai     AIConfig
	Search SearchConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	SessionTTL         time.Duration
	BodyLimitMB        int
}

// APIKeys are only ever read from the environment (or .env); never from source.
type APIKeys struct {
	LLM    string
	Search string
}

type AIConfig struct {
	LLMProvider          string // "groq", "openai", "huggingface", "ollama"
	LLMModel             string
	LLMBaseURL           string
	LLMTimeout           time.Duration
	FrequencyPenalty     float64
	BlueprintTemperature float64
	PersonaFile          string // optional YAML catalog; built-in personas when empty
	EventTopic           string
}

type SearchConfig struct {
	Endpoint   string
	Depth      string
	MaxResults int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/turns.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			SessionTTL:         time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 25),
		},
		Keys: APIKeys{
			LLM:    firstEnv("GROQ_API_KEY", "LLM_API_KEY"),
			Search: getEnv("TAVILY_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:          getEnv("LLM_PROVIDER", factory.ProviderGroq),
			LLMModel:             getEnv("LLM_MODEL", "mixtral-8x7b-32768"),
			LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
			LLMTimeout:           time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 0)) * time.Second,
			FrequencyPenalty:     getEnvAsFloat("LLM_FREQUENCY_PENALTY", 0.5),
			BlueprintTemperature: getEnvAsFloat("BLUEPRINT_TEMPERATURE", 0.3),
			PersonaFile:          getEnv("PERSONA_FILE", ""),
			EventTopic:           getEnv("TURN_EVENT_TOPIC", "ECHO_TURN_EVENTS"),
		},
		Search: SearchConfig{
			Endpoint:   getEnv("SEARCH_ENDPOINT", "https://api.tavily.com/search"),
			Depth:      getEnv("SEARCH_DEPTH", "basic"),
			MaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 3),
		},
	}
}

// Validate rejects configurations a session could never run with.
// A missing hosted-model credential is fatal before any turn executes.
func (c *Config) Validate() error {
	var errs []error
	if factory.RequiresAPIKey(c.Ai.LLMProvider) && c.Keys.LLM == "" {
		errs = append(errs, fmt.Errorf("%s api key not found: set GROQ_API_KEY or LLM_API_KEY", c.Ai.LLMProvider))
	}
	if c.Ai.LLMModel == "" {
		errs = append(errs, errors.New("LLM_MODEL must not be empty"))
	}
	if c.Search.MaxResults <= 0 {
		errs = append(errs, errors.New("SEARCH_MAX_RESULTS must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := getEnv(key, ""); value != "" {
			return value
		}
	}
	return ""
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
