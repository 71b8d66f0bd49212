package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaEmbedder computes embeddings through an Ollama server's
// /embeddings endpoint.
type OllamaEmbedder struct {
	baseURL    string
	httpClient *http.Client
	modelName  string
	dimension  int
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func NewOllamaEmbedder(modelName, baseURL string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}
	return &OllamaEmbedder{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Minute},
		modelName:  modelName,
	}
}

func (e *OllamaEmbedder) Name() string { return "ollama" }

// Prepare probes the model once to learn the vector dimension; Ollama
// embeddings need no corpus-wide fitting.
func (e *OllamaEmbedder) Prepare(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("empty corpus for ollama embedder prepare")
	}
	vec, err := e.Embed(ctx, corpus[0])
	if err != nil {
		return fmt.Errorf("probing embedding dimension: %w", err)
	}
	e.dimension = len(vec)
	return nil
}

func (e *OllamaEmbedder) Dimension() int { return e.dimension }

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody, err := json.Marshal(embeddingRequest{Model: e.modelName, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embeddings error (status %d): %s", resp.StatusCode, body)
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}

	return out.Embedding, nil
}
