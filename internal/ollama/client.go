package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultURL     = "http://localhost:11434/api/generate"
	DefaultTimeout = 1200 * time.Second

	defaultTemperature = 0.3
	missingResponse    = "Error: Model response not found."
)

type Client struct {
	url    string
	model  string
	client *http.Client
}

// NewClient returns a client for the Ollama generate endpoint. A zero timeout
// uses DefaultTimeout; local inference on large blocks can take minutes.
func NewClient(url, model string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

type options struct {
	Temperature float64 `json:"temperature"`
}

type request struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type response struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generate sends a non-streaming generate request and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(request{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: options{Temperature: defaultTemperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return "", fmt.Errorf("api error %d: %s", resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Response == nil {
		return missingResponse, nil
	}
	return *apiResp.Response, nil
}
