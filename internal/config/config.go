package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the process reads from the environment, plus
// the optional retrieval overrides from a YAML file (DOCCHAT_CONFIG).
type Config struct {
	Port           string
	AllowedOrigins []string

	DataDirectory    string
	AllowedFileTypes []string

	ChunkSize    int
	ChunkOverlap int
	MaxTokens    int

	EmbeddingsModel string
	ChatModel       string

	LLMBackend     string // "mock", "ollama" or "vertex"
	Embedder       string // "tfidf" or "ollama"
	VectorStore    string // "memory" or "qdrant"
	StorageBackend string // "memory" or "firestore"

	OllamaURL        string
	QdrantURL        string
	QdrantCollection string

	GCPProjectID string
	GCPLocation  string
}

// fileConfig is the YAML overlay for the retrieval/generation stack.
type fileConfig struct {
	ChunkSize       int    `yaml:"chunk_size"`
	ChunkOverlap    int    `yaml:"chunk_overlap"`
	MaxTokens       int    `yaml:"max_tokens"`
	EmbeddingsModel string `yaml:"embeddings_model"`
	ChatModel       string `yaml:"chat_model"`
	LLMBackend      string `yaml:"llm_backend"`
	Embedder        string `yaml:"embedder"`
	VectorStore     string `yaml:"vector_store"`
	OllamaURL       string `yaml:"ollama_url"`
	Qdrant          struct {
		URL        string `yaml:"url"`
		Collection string `yaml:"collection"`
	} `yaml:"qdrant"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getListEnv(key, def string) []string {
	raw := getEnv(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Load reads all env vars and builds the config. When DOCCHAT_CONFIG
// names a YAML file, its values take precedence for the retrieval and
// generation stack.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("DOCCHAT_PORT", "8001"),
		AllowedOrigins: getListEnv("DOCCHAT_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),

		DataDirectory:    getEnv("DOCCHAT_DATA_DIR", "data"),
		AllowedFileTypes: getListEnv("DOCCHAT_ALLOWED_FILE_TYPES", ".pdf,.docx,.txt"),

		ChunkSize:    getIntEnv("DOCCHAT_CHUNK_SIZE", 500),
		ChunkOverlap: getIntEnv("DOCCHAT_CHUNK_OVERLAP", 20),
		MaxTokens:    getIntEnv("DOCCHAT_MAX_TOKENS", 150),

		EmbeddingsModel: getEnv("DOCCHAT_EMBEDDINGS_MODEL", "nomic-embed-text"),
		ChatModel:       getEnv("DOCCHAT_CHAT_MODEL", "llama3"),

		LLMBackend:     getEnv("DOCCHAT_LLM_BACKEND", "mock"),
		Embedder:       getEnv("DOCCHAT_EMBEDDER", "tfidf"),
		VectorStore:    getEnv("DOCCHAT_VECTOR_STORE", "memory"),
		StorageBackend: getEnv("DOCCHAT_STORAGE_BACKEND", "memory"),

		OllamaURL:        getEnv("DOCCHAT_OLLAMA_URL", "http://localhost:11434/api"),
		QdrantURL:        getEnv("DOCCHAT_QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("DOCCHAT_QDRANT_COLLECTION", "docchat"),

		GCPProjectID: getEnv("DOCCHAT_GCP_PROJECT", ""),
		GCPLocation:  getEnv("DOCCHAT_GCP_LOCATION", "us-central1"),
	}

	if path := os.Getenv("DOCCHAT_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.ChunkSize > 0 {
		c.ChunkSize = fc.ChunkSize
	}
	if fc.ChunkOverlap > 0 {
		c.ChunkOverlap = fc.ChunkOverlap
	}
	if fc.MaxTokens > 0 {
		c.MaxTokens = fc.MaxTokens
	}
	if fc.EmbeddingsModel != "" {
		c.EmbeddingsModel = fc.EmbeddingsModel
	}
	if fc.ChatModel != "" {
		c.ChatModel = fc.ChatModel
	}
	if fc.LLMBackend != "" {
		c.LLMBackend = fc.LLMBackend
	}
	if fc.Embedder != "" {
		c.Embedder = fc.Embedder
	}
	if fc.VectorStore != "" {
		c.VectorStore = fc.VectorStore
	}
	if fc.OllamaURL != "" {
		c.OllamaURL = fc.OllamaURL
	}
	if fc.Qdrant.URL != "" {
		c.QdrantURL = fc.Qdrant.URL
	}
	if fc.Qdrant.Collection != "" {
		c.QdrantCollection = fc.Qdrant.Collection
	}

	return nil
}
