package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/docchat/internal/domain"
)

// OllamaClient generates answers through a local Ollama server.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	modelName  string
	maxTokens  int
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaClient creates a client for a local Ollama server. baseURL
// defaults to http://localhost:11434/api.
func NewOllamaClient(modelName, baseURL string, maxTokens int) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}

	return &OllamaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Generations can take a while on CPU-only hosts.
			Timeout: 5 * time.Minute,
		},
		modelName: modelName,
		maxTokens: maxTokens,
	}
}

// Generate implements domain.GenerationClient against the /generate
// endpoint, non-streaming.
func (c *OllamaClient) Generate(ctx context.Context, question, contextText string) (string, error) {
	req := ollamaRequest{
		Model:  c.modelName,
		Prompt: BuildPrompt(contextText, question),
		Stream: false,
		Options: ollamaOptions{
			NumPredict: c.maxTokens,
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", classifyBackendError(resp.StatusCode, string(body))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	if out.Response == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}

	return out.Response, nil
}

// classifyBackendError maps backend failure text onto the domain's
// generation failure kinds so the chat flow can pick a canned reply.
func classifyBackendError(status int, body string) error {
	lower := strings.ToLower(body)
	switch {
	case strings.Contains(lower, "cuda") || strings.Contains(lower, "gpu"):
		return fmt.Errorf("ollama error (status %d): %s: %w", status, body, domain.ErrAcceleratorUnavailable)
	case strings.Contains(lower, "tensor") || strings.Contains(lower, "blas"):
		return fmt.Errorf("ollama error (status %d): %s: %w", status, body, domain.ErrNumericBackendUnavailable)
	default:
		return fmt.Errorf("ollama error (status %d): %s", status, body)
	}
}
