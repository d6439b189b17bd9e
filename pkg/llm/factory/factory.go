package factory

import (
	"fmt"
	"net/http"
	"time"

	"project-echo-be/pkg/llm"
	"project-echo-be/pkg/llm/ollama"
	"project-echo-be/pkg/llm/openai"
)

const (
	ProviderGroq        = "groq"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"

	HuggingFaceBaseURL = "https://router.huggingface.co/v1/"
)

// Settings selects and parameterises one backend.
type Settings struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// RequiresAPIKey reports whether the provider is a hosted API needing a credential.
func RequiresAPIKey(provider string) bool {
	switch provider {
	case ProviderGroq, ProviderOpenAI, ProviderHuggingFace:
		return true
	default:
		return false
	}
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderHuggingFace:
		if s.APIKey == "" {
			return nil, fmt.Errorf("%s provider requires an api key", s.Provider)
		}
		baseURL := s.BaseURL
		if baseURL == "" {
			switch s.Provider {
			case ProviderGroq:
				baseURL = openai.GroqBaseURL
			case ProviderHuggingFace:
				baseURL = HuggingFaceBaseURL
			}
		}
		var client *http.Client
		if s.Timeout > 0 {
			client = &http.Client{Timeout: s.Timeout}
		}
		return openai.NewProvider(s.APIKey, baseURL, s.Model, client), nil
	case ProviderOllama:
		return ollama.NewOllamaProvider(s.BaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
