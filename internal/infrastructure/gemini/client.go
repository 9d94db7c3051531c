package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iho/tokengate/internal/domain"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultAPIVersion is the Gemini API version.
	DefaultAPIVersion = "v1beta"

	// DefaultModel is the default generation model.
	DefaultModel = "gemini-2.5-flash-image"
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements usecase.Generator against the Gemini generateContent
// API. The call deadline comes from the request context; the client sets
// no timeout of its own.
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient HTTPClient
}

// Config contains configuration for the Gemini client.
type Config struct {
	APIKey  string // Required
	BaseURL string // Optional, defaults to the public endpoint
	Model   string // Optional, defaults to DefaultModel
}

// NewClient creates a new Gemini client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		apiVersion: DefaultAPIVersion,
		model:      cfg.Model,
		httpClient: &http.Client{},
	}, nil
}

type apiRequest struct {
	Contents []apiContent `json:"contents"`
}

type apiContent struct {
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text string `json:"text"`
}

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []apiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate runs one generateContent call.
func (c *Client) Generate(ctx context.Context, prompt string) (*domain.GeneratedContent, error) {
	body, err := json.Marshal(apiRequest{
		Contents: []apiContent{{Parts: []apiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		c.baseURL, c.apiVersion, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, parseAPIError(resp.StatusCode, raw)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	content := &domain.GeneratedContent{
		Text:  apiResp.Candidates[0].Content.Parts[0].Text,
		Model: c.model,
	}

	if apiResp.UsageMetadata != nil {
		content.InputTokens = apiResp.UsageMetadata.PromptTokenCount
		content.OutputTokens = apiResp.UsageMetadata.CandidatesTokenCount
	}

	return content, nil
}

func parseAPIError(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gemini API error (status %d, %s): %s",
			status, apiErr.Error.Status, apiErr.Error.Message)
	}

	return fmt.Errorf("gemini API error (status %d)", status)
}
