// Package summary summarises page text with the Gemini generateContent API
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayoisaiah/diary/internal/apperr"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-pro"

	// Fallback is returned when the API responds without any candidate text.
	Fallback = "No summary available."
)

var errMissingKey = &apperr.Error{
	Message: "a Gemini API key is required for page summaries",
}

// Client is a Gemini API client.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	Model    string
	APIKey   string
}

// New returns a Client. Empty endpoint and model fall back to the defaults.
func New(endpoint, model, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errMissingKey
	}

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	if model == "" {
		model = DefaultModel
	}

	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Model:    model,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: 90 * time.Second},
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Prompt builds the summarisation prompt for text.
func Prompt(text string) string {
	return "Summarize the following webpage content in 2-3 bullet points with key takeaways:\n\n" + text
}

// Summarize returns a short bullet-point summary of text.
func (c *Client) Summarize(ctx context.Context, _, _, text string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: Prompt(text)}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent?key=%s",
		c.Endpoint,
		url.PathEscape(c.Model),
		url.QueryEscape(c.APIKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini http %d: %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, out.Error.Message)
		}

		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(raw))
	}

	if len(out.Candidates) == 0 ||
		len(out.Candidates[0].Content.Parts) == 0 ||
		out.Candidates[0].Content.Parts[0].Text == "" {
		return Fallback, nil
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}
