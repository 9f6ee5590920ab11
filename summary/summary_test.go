package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	var got generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"• point one"}]}}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", "secret")
	require.NoError(t, err)

	out, err := c.Summarize(context.Background(), "https://example.com", "", "page body")
	require.NoError(t, err)
	assert.Equal(t, "• point one", out)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.True(t, strings.HasSuffix(got.Contents[0].Parts[0].Text, "\n\npage body"))
	assert.Contains(t, got.Contents[0].Parts[0].Text, "2-3 bullet points")
}

func TestSummarizeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "gemini-1.5-flash", "k")
	require.NoError(t, err)

	out, err := c.Summarize(context.Background(), "", "", "text")
	require.NoError(t, err)
	assert.Equal(t, Fallback, out)
}

func TestSummarizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", "bad")
	require.NoError(t, err)

	_, err = c.Summarize(context.Background(), "", "", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("", "", "")
	assert.ErrorIs(t, err, errMissingKey)
}
