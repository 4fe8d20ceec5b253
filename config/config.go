package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Gemini
	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float64

	// Embeddings
	EmbeddingProvider string
	OllamaURL         string
	OllamaEmbedModel  string
	GeminiEmbedModel  string

	// Chroma
	ChromaURL        string
	ChromaCollection string

	// Documents
	DocumentPath     string
	WatchDocuments   bool
	UnidocLicenseKey string
	ChunkSize        int
	ChunkOverlap     int
	RetrievalTopK    int

	// Cache
	RedisURL string
	CacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Chat client
	ChatServerURL string
	ChatLogFile   string
}

const (
	EmbeddingProviderOllama = "ollama"
	EmbeddingProviderGemini = "gemini"
)

// Load reads the configuration from the environment, loading envFile first
// when it exists. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTemperature: getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0),
		EmbeddingProvider: strings.ToLower(getEnvOrDefault("EMBEDDING_PROVIDER", EmbeddingProviderOllama)),
		OllamaURL:         getEnvOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel:  getEnvOrDefault("OLLAMA_EMBED_MODEL", "nomic-embed-text:v1.5"),
		GeminiEmbedModel:  getEnvOrDefault("GEMINI_EMBED_MODEL", "text-embedding-004"),
		ChromaURL:         getEnvOrDefault("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection:  getEnvOrDefault("CHROMA_COLLECTION", "invoices"),
		DocumentPath:      getEnvOrDefault("DOCUMENT_PATH", "sample/sample-invoice.pdf"),
		WatchDocuments:    getEnvAsBoolOrDefault("WATCH_DOCUMENTS", false),
		UnidocLicenseKey:  os.Getenv("UNIDOC_LICENSE_KEY"),
		ChunkSize:         getEnvAsIntOrDefault("CHUNK_SIZE", 1000),
		ChunkOverlap:      getEnvAsIntOrDefault("CHUNK_OVERLAP", 100),
		RetrievalTopK:     getEnvAsIntOrDefault("RETRIEVAL_TOP_K", 4),
		RedisURL:          os.Getenv("REDIS_URL"),
		CacheTTL:          time.Duration(getEnvAsIntOrDefault("CACHE_TTL_SECONDS", 3600)) * time.Second,
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "text"),
		ChatServerURL:     getEnvOrDefault("CHAT_SERVER_URL", "http://localhost:8080"),
		ChatLogFile:       os.Getenv("CHAT_LOG_FILE"),
	}

	return cfg, nil
}

// ValidateServer checks the settings the backend cannot start without.
func (c *Config) ValidateServer() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY environment variable is not set")
	}
	switch c.EmbeddingProvider {
	case EmbeddingProviderOllama, EmbeddingProviderGemini:
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q (want %q or %q)", c.EmbeddingProvider, EmbeddingProviderOllama, EmbeddingProviderGemini)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.RetrievalTopK)
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
