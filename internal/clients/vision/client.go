// Package vision calls the image analysis OCR API used to read death
// certificates. The client returns typed errors so the resilience manager
// can classify retryability.
package vision

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
const ServiceName = "vision"

const analyzePath = "/computervision/imageanalysis:analyze?features=read&api-version=2024-02-01"

// Client talks to the OCR endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func New(cfg config.ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, errors.New("vision endpoint and API key are required")
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// analyzeResponse mirrors the Image Analysis read result.
type analyzeResponse struct {
	ReadResult struct {
		Blocks []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"blocks"`
	} `json:"readResult"`
}

// ExtractText runs OCR over the image and returns the recognized lines
// joined by newlines.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+analyzePath, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", resilience.NewServiceError(ServiceName, err, true)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		io.Copy(io.Discard, resp.Body)
		return "", err
	}

	var result analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", resilience.NewServiceError(ServiceName, fmt.Errorf("decode vision response: %w", err), false)
	}

	var sb strings.Builder
	for _, block := range result.ReadResult.Blocks {
		for _, line := range block.Lines {
			sb.WriteString(line.Text)
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return resilience.NewAuthenticationError(ServiceName, fmt.Errorf("status %d", status))
	case status == http.StatusNotFound:
		return resilience.NewNotFoundError(ServiceName, "analyze endpoint")
	default:
		return resilience.NewHTTPServiceError(ServiceName, status, errors.New("vision analyze failed"))
	}
}
