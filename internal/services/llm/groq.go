package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const DefaultGroqBaseURL = "https://api.groq.com"

// GroqClient calls Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	apiKey string
	model  string
	settings
}

func NewGroqClient(apiKey, model string, opts ...Option) *GroqClient {
	return &GroqClient{
		apiKey:   apiKey,
		model:    model,
		settings: newSettings(DefaultGroqBaseURL, opts),
	}
}

func (c *GroqClient) Name() string { return "groq" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type groqErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *GroqClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("groq: GROQ_API_KEY is not set")
	}

	body := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	raw, err := postJSON(ctx, c.httpClient, c.baseURL+"/openai/v1/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.Provider = c.Name()
			var eb groqErrorBody
			if json.Unmarshal([]byte(apiErr.Body), &eb) == nil {
				apiErr.Message = eb.Error.Message
				apiErr.Status = eb.Error.Code
			}
		}
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("groq: decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
