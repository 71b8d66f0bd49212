package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// VertexClient generates answers through Vertex AI (Gemini).
type VertexClient struct {
	client    *genai.Client
	modelName string
	maxTokens int
}

// NewVertexClient creates a GenerationClient backed by Vertex AI.
func NewVertexClient(ctx context.Context, projectID, location, modelName string, maxTokens int) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("projectID and location are required for the Vertex client")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
	}, nil
}

// Generate implements domain.GenerationClient using Vertex AI.
func (v *VertexClient) Generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := BuildPrompt(contextText, question)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: int32(v.maxTokens),
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}

	return text, nil
}
