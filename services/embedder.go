package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github/itish2003/invoicechat/models"

	"google.golang.org/genai"
)

// Embedder turns text into a vector for the document store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder generates embeddings with a local Ollama server.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaEmbedder(httpClient *http.Client, baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(models.OllamaEmbedRequest{
		Model:  o.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp models.OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if ollamaResp.Error != "" {
		return nil, fmt.Errorf("ollama returned an error: %s", ollamaResp.Error)
	}
	if len(ollamaResp.Embedding) == 0 {
		return nil, errors.New("ollama returned an empty embedding")
	}
	return ollamaResp.Embedding, nil
}

// GeminiEmbedder generates embeddings with the Gemini embedding models.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding call failed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini returned an empty embedding")
	}
	return result.Embeddings[0].Values, nil
}
