package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarthire/internal/config"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Resume text:")

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(provider string) *config.Config {
	return &config.Config{LLMProvider: provider, LLMAPIKey: "test-key", LLMModel: "test-model", LLMTimeout: 5 * time.Second}
}

func TestService_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		want     bool
	}{
		{"openai with key", "openai", "k", true},
		{"openai without key", "openai", "", false},
		{"groq with key", "groq", "k", true},
		{"ollama keyless", "ollama", "", true},
		{"none", "none", "k", false},
		{"empty", "", "k", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(&config.Config{LLMProvider: tt.provider, LLMAPIKey: tt.key})
			assert.Equal(t, tt.want, s.Enabled())
		})
	}
}

func TestService_ExtractCandidate(t *testing.T) {
	content := `{"full_name": " Jane Doe ", "email": "jane@example.com", "phone": null,
		"location": "Berlin", "skills": ["Go", " ", "Kubernetes"], "education": 7, "last_job_title": "SRE"}`
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	s := NewService(testConfig("openai"), WithEndpoint(srv.URL))
	got, err := s.ExtractCandidate(context.Background(), "resume", CandidateFields{Email: "jane@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", got.FullName)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Empty(t, got.Phone)
	assert.Equal(t, "Berlin", got.Location)
	assert.Equal(t, StringList{"Go", "Kubernetes"}, got.Skills)
	assert.Empty(t, got.Education, "non-string values are ignored")
	assert.Equal(t, "SRE", got.LastJobTitle)
}

func TestService_ExtractCandidateCommaSkillsAndFences(t *testing.T) {
	content := "```json\n{\"skills\": \"python, aws ,\"}\n```"
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	s := NewService(testConfig("groq"), WithEndpoint(srv.URL))
	got, err := s.ExtractCandidate(context.Background(), "resume", CandidateFields{})
	require.NoError(t, err)
	assert.Equal(t, StringList{"python", "aws"}, got.Skills)
}

func TestService_ExtractCandidateErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := chatServer(t, "", http.StatusTooManyRequests)
		defer srv.Close()
		s := NewService(testConfig("openai"), WithEndpoint(srv.URL))
		_, err := s.ExtractCandidate(context.Background(), "resume", CandidateFields{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := chatServer(t, "not json at all", http.StatusOK)
		defer srv.Close()
		s := NewService(testConfig("openai"), WithEndpoint(srv.URL))
		_, err := s.ExtractCandidate(context.Background(), "resume", CandidateFields{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse LLM response")
	})

	t.Run("disabled", func(t *testing.T) {
		s := NewService(&config.Config{LLMProvider: "none"})
		_, err := s.ExtractCandidate(context.Background(), "resume", CandidateFields{})
		assert.Error(t, err)
	})
}

func TestService_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json", req["format"])
		assert.True(t, strings.HasPrefix(req["prompt"].(string), "You are assisting"))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": `{"full_name": "Ana"}`})
	}))
	defer srv.Close()

	s := NewService(&config.Config{LLMProvider: "ollama", LLMModel: "llama3"}, WithEndpoint(srv.URL))
	got, err := s.ExtractCandidate(context.Background(), "resume", CandidateFields{})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FullName)
}
