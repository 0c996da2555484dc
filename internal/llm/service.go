package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smarthire/internal/config"
	"smarthire/internal/logger"
	httpclient "smarthire/pkg/http"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

var defaultEndpoints = map[Provider]string{
	ProviderOpenAI: "https://api.openai.com/v1/chat/completions",
	ProviderGroq:   "https://api.groq.com/openai/v1/chat/completions",
	ProviderOllama: "http://localhost:11434/api/generate",
}

type Service struct {
	provider Provider
	apiKey   string
	model    string
	endpoint string
	client   *httpclient.Client
	log      zerolog.Logger
}

type Option func(*Service)

// WithEndpoint overrides the provider URL (self-hosted gateways, tests).
func WithEndpoint(url string) Option {
	return func(s *Service) { s.endpoint = url }
}

func NewService(cfg *config.Config, opts ...Option) *Service {
	provider := Provider(strings.ToLower(cfg.LLMProvider))
	if provider == "" {
		provider = ProviderNone
	}
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s := &Service{
		provider: provider,
		apiKey:   cfg.LLMAPIKey,
		model:    cfg.LLMModel,
		endpoint: defaultEndpoints[provider],
		client:   httpclient.NewClient(timeout),
		log:      logger.Component("llm"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a provider is selected and, for hosted providers, keyed.
func (s *Service) Enabled() bool {
	switch s.provider {
	case ProviderOllama:
		return true
	case ProviderOpenAI, ProviderGroq:
		return s.apiKey != ""
	}
	return false
}

// Generate sends a system and user prompt and returns the raw model output.
func (s *Service) Generate(ctx context.Context, system, prompt string) (string, error) {
	switch s.provider {
	case ProviderOpenAI, ProviderGroq:
		return s.callChat(ctx, system, prompt)
	case ProviderOllama:
		return s.callOllama(ctx, system+"\n\n"+prompt)
	case ProviderNone:
		return "", fmt.Errorf("LLM provider not configured")
	default:
		return "", fmt.Errorf("unknown provider: %s", s.provider)
	}
}

func (s *Service) callChat(ctx context.Context, system, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.0,
		"max_tokens":  600,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := s.post(ctx, reqBody, true, &result); err != nil {
		return "", err
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s", s.provider, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", s.provider)
	}
	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := s.post(ctx, reqBody, false, &result); err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}
	return result.Response, nil
}

func (s *Service) post(ctx context.Context, body interface{}, auth bool, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.log.Debug().Str("provider", string(s.provider)).Dur("elapsed", time.Since(start)).Msg("llm request finished")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s API error: %d", s.provider, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
