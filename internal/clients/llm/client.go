// Package llm calls the chat completions API used for policy interpretation
// and notification drafting.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"legatum/internal/platform/config"
	"legatum/internal/resilience"
)

// ServiceName identifies this dependency in health snapshots and audit logs.
const ServiceName = "llm"

// Client talks to a chat completions deployment.
type Client struct {
	endpoint   string
	apiKey     string
	deployment string
	httpClient *http.Client
}

func New(cfg config.ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, errors.New("llm endpoint and API key are required")
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		deployment: cfg.Deployment,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries the tunable parts of a chat completion call.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs one chat completion and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, completion CompletionRequest) (string, error) {
	body, err := json.Marshal(completion)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=2024-02-01", c.endpoint, c.deployment)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", resilience.NewServiceError(ServiceName, err, true)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		io.Copy(io.Discard, resp.Body)
		return "", err
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", resilience.NewServiceError(ServiceName, fmt.Errorf("decode completion response: %w", err), false)
	}
	if len(result.Choices) == 0 {
		return "", resilience.NewServiceError(ServiceName, errors.New("completion returned no choices"), false)
	}
	return result.Choices[0].Message.Content, nil
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return resilience.NewAuthenticationError(ServiceName, fmt.Errorf("status %d", status))
	case status == http.StatusNotFound:
		return resilience.NewNotFoundError(ServiceName, "deployment")
	default:
		return resilience.NewHTTPServiceError(ServiceName, status, errors.New("chat completion failed"))
	}
}
