package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "console" or "json"

	// Storage: "google" uses the spreadsheet when credentials are present, "local" skips it.
	// Without the spreadsheet, WorksheetPath selects the xlsx workbook before the JSON file.
	StorageMode              string
	GoogleServiceAccountJSON string // inline JSON or a path to the key file
	GoogleSheetsID           string
	GoogleDriveFolderID      string
	WorksheetPath            string // optional .xlsx workbook used as the tabular backend
	LocalDataDir             string
	LocalStorePath           string
	LocalUploadsDir          string

	// Attachment archive: "drive", "s3" or "local". Empty picks drive when configured, else local.
	ArchiveBackend string
	S3             S3Config

	// LLM Configuration
	LLMProvider        string // "openai", "groq", "ollama" or "none"
	LLMModel           string
	LLMAPIKey          string
	LLMTimeout         time.Duration
	EnrichmentMaxChars int

	OCRDPI       int
	FetchTimeout time.Duration

	AuditCapacity    int
	AuditDatabaseURL string

	QueueSize int
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Debug().Err(err).Msg("no .env in working directory, trying parent directory")
		if err = godotenv.Load("../../.env"); err != nil {
			log.Debug().Msg("could not load .env file, using environment variables")
		}
	}

	dataDir := getEnv("LOCAL_DATA_DIR", filepath.Join("data", "dev"))

	llmProvider := strings.ToLower(getEnv("LLM_PROVIDER", "openai"))
	llmModel := getEnv("LLM_MODEL", "gpt-4o-mini")

	// Get API key based on provider
	llmAPIKey := os.Getenv("LLM_API_KEY")
	if llmAPIKey == "" {
		switch llmProvider {
		case "openai":
			llmAPIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			llmAPIKey = os.Getenv("GROQ_API_KEY")
		}
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		StorageMode:              strings.ToLower(getEnv("STORAGE_MODE", "google")),
		GoogleServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleSheetsID:           os.Getenv("GOOGLE_SHEETS_ID"),
		GoogleDriveFolderID:      os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		WorksheetPath:            os.Getenv("WORKSHEET_PATH"),
		LocalDataDir:             dataDir,
		LocalStorePath:           getEnv("LOCAL_STORE_PATH", filepath.Join(dataDir, "candidates.json")),
		LocalUploadsDir:          getEnv("UPLOADS_DIR", filepath.Join(dataDir, "uploads")),

		ArchiveBackend: strings.ToLower(os.Getenv("ARCHIVE_BACKEND")),
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			UseSSL:    getEnvBool("S3_USE_SSL", true),
		},

		LLMProvider:        llmProvider,
		LLMModel:           llmModel,
		LLMAPIKey:          llmAPIKey,
		LLMTimeout:         getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		EnrichmentMaxChars: getEnvInt("ENRICHMENT_MAX_CHARS", 8000),

		OCRDPI:       getEnvInt("OCR_DPI", 300),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		AuditCapacity:    getEnvInt("AUDIT_CAPACITY", 1000),
		AuditDatabaseURL: os.Getenv("AUDIT_DATABASE_URL"),

		QueueSize: getEnvInt("INGEST_QUEUE_SIZE", 50),
	}
}

// EnrichmentEnabled reports whether an external structured-extraction capability is configured.
func (c *Config) EnrichmentEnabled() bool {
	if c.LLMProvider == "" || c.LLMProvider == "none" {
		return false
	}
	// Ollama runs locally without a key.
	return c.LLMProvider == "ollama" || c.LLMAPIKey != ""
}

// GoogleConfigured reports whether spreadsheet credentials and a sheet id are both present.
func (c *Config) GoogleConfigured() bool {
	return c.StorageMode != "local" && c.GoogleServiceAccountJSON != "" && c.GoogleSheetsID != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
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

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// ServiceAccountJSON resolves GoogleServiceAccountJSON, which may hold the key
// inline or point at a key file (absolute, relative to the working directory,
// or relative to LocalDataDir's parent).
func (c *Config) ServiceAccountJSON() ([]byte, error) {
	raw := strings.Trim(strings.TrimSpace(c.GoogleServiceAccountJSON), `"'`)
	if raw == "" {
		return nil, errors.New("empty google service account configuration")
	}
	if strings.HasPrefix(raw, "{") {
		if json.Valid([]byte(raw)) {
			return []byte(raw), nil
		}
	}

	candidates := []string{raw}
	if !filepath.IsAbs(raw) {
		if wd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(wd, raw))
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(c.LocalDataDir), filepath.Base(raw)))
	}
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON in %s", p)
		}
		return data, nil
	}
	return nil, errors.New("invalid google service account JSON or path")
}
