package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient calls Groq's OpenAI-compatible chat completion API.
type GroqClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewGroqClient() *GroqClient {
	return &GroqClient{
		baseURL:    defaultGroqBaseURL,
		httpClient: &http.Client{},
	}
}

// NewGroqClientWithBaseURL is used by tests to point at a stub server.
func NewGroqClientWithBaseURL(baseURL string) *GroqClient {
	return &GroqClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

type groqRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type groqUsage struct {
	PromptTokens     int      `json:"prompt_tokens"`
	CompletionTokens int      `json:"completion_tokens"`
	Cost             *float64 `json:"cost,omitempty"`
}

type groqResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *groqUsage `json:"usage"`
	XGroq *struct {
		Usage *struct {
			TotalCost *float64 `json:"total_cost"`
		} `json:"usage"`
	} `json:"x_groq"`
}

// ChatCompletion performs a non-streaming chat completion.
func (g *GroqClient) ChatCompletion(ctx context.Context, apiKey, model string, messages []Message) (*Completion, error) {
	payload := groqRequest{Model: model, Messages: messages}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidKey, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result groqResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	completion := &Completion{
		Content: result.Choices[0].Message.Content,
		Model:   result.Model,
	}
	if result.Usage != nil {
		completion.PromptTokens = result.Usage.PromptTokens
		completion.CompletionTokens = result.Usage.CompletionTokens
	}
	completion.CostDollars = extractCost(&result)

	return completion, nil
}

// extractCost resolves the vendor cost figure through its optional locations,
// in order: usage.cost, then x_groq.usage.total_cost. Nil when neither is set.
func extractCost(resp *groqResponse) *float64 {
	if resp.Usage != nil && resp.Usage.Cost != nil {
		return resp.Usage.Cost
	}
	if resp.XGroq != nil && resp.XGroq.Usage != nil && resp.XGroq.Usage.TotalCost != nil {
		return resp.XGroq.Usage.TotalCost
	}
	return nil
}
