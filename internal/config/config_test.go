package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("OCR_DPI", "")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 300, cfg.OCRDPI)
	assert.Equal(t, 8000, cfg.EnrichmentMaxChars)
	assert.False(t, cfg.EnrichmentEnabled(), "openai without a key must not enable enrichment")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("AUDIT_CAPACITY", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, "gsk_test", cfg.LLMAPIKey)
	assert.True(t, cfg.EnrichmentEnabled())
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.S3.UseSSL)
	assert.Equal(t, 1000, cfg.AuditCapacity)
}

func TestGoogleConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"both present", Config{StorageMode: "google", GoogleServiceAccountJSON: "{}", GoogleSheetsID: "abc"}, true},
		{"missing sheet id", Config{StorageMode: "google", GoogleServiceAccountJSON: "{}"}, false},
		{"forced local", Config{StorageMode: "local", GoogleServiceAccountJSON: "{}", GoogleSheetsID: "abc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.GoogleConfigured())
		})
	}
}

func TestEnrichmentEnabledOllamaWithoutKey(t *testing.T) {
	cfg := Config{LLMProvider: "ollama"}
	assert.True(t, cfg.EnrichmentEnabled())

	cfg = Config{LLMProvider: "none", LLMAPIKey: "x"}
	assert.False(t, cfg.EnrichmentEnabled())
}
