// Package notion exports daily digests as pages in a Notion database
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/stats"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"

	// maxTextLength is the longest rich text content Notion accepts.
	maxTextLength = 2000
)

var errNotConfigured = &apperr.Error{
	Message: "Notion API key and database ID must be configured",
}

// Client is a Notion API client.
type Client struct {
	HTTP       *http.Client
	BaseURL    string
	APIKey     string
	DatabaseID string
	Version    string
}

// New returns a Client for the database identified by databaseID.
func New(apiKey, databaseID string) (*Client, error) {
	if apiKey == "" || databaseID == "" {
		return nil, errNotConfigured
	}

	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		DatabaseID: databaseID,
		Version:    DefaultVersion,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}

		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		method,
		strings.TrimRight(c.BaseURL, "/")+path,
		r,
	)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Notion-Version", c.Version)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return fmt.Errorf("notion http %d: %s", resp.StatusCode, e.Message)
		}

		return fmt.Errorf("notion http %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(raw, out)
}

type richText struct {
	Type      string `json:"type,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
	Text      struct {
		Content string `json:"content"`
	} `json:"text"`
}

func text(s string) []richText {
	var out []richText

	runes := []rune(s)

	for len(runes) > 0 {
		n := min(len(runes), maxTextLength)

		var rt richText

		rt.Type = "text"
		rt.Text.Content = string(runes[:n])
		out = append(out, rt)

		runes = runes[n:]
	}

	return out
}

// TestConnection verifies the credentials by fetching the configured
// database and returns its title.
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	var db struct {
		Title []richText `json:"title"`
	}

	err := c.do(ctx, http.MethodGet, "/v1/databases/"+c.DatabaseID, nil, &db)
	if err != nil {
		return "", err
	}

	var title strings.Builder

	for _, t := range db.Title {
		if t.PlainText != "" {
			title.WriteString(t.PlainText)
		} else {
			title.WriteString(t.Text.Content)
		}
	}

	return title.String(), nil
}

// Export creates a page for the digest in the configured database.
func (c *Client) Export(ctx context.Context, d stats.Digest) error {
	page := map[string]any{
		"parent": map[string]string{"database_id": c.DatabaseID},
		"properties": map[string]any{
			"Title": map[string]any{
				"title": text(d.Title),
			},
			"Date": map[string]any{
				"date": map[string]string{"start": d.Date.Format(time.DateOnly)},
			},
			"Productivity Score": map[string]any{
				"number": d.ProductivityScore,
			},
		},
		"children": []map[string]any{
			{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]any{
					"rich_text": text(d.Body),
				},
			},
		},
	}

	return c.do(ctx, http.MethodPost, "/v1/pages", page, nil)
}
