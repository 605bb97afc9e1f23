package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coreerrors "daily-feed/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Path   string
	Auth   string
	APIKey string
	Body   map[string]interface{}
}

func completionServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(data, &body)
		requests = append(requests, recordedRequest{
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			APIKey: r.Header.Get("x-api-key"),
			Body:   body,
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "` + reply + `", "type": "invalid_request_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1735689600,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "` + reply + `"}}]
		}`))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestGenerateText(t *testing.T) {
	server, requests := completionServer(t, http.StatusOK, "front page")

	client, err := NewClient(Config{Type: "openai", BaseURL: server.URL + "/v1/", APIKey: "sk-test", Model: "test-model"}, nil)
	require.NoError(t, err)

	text, err := client.GenerateText(context.Background(), "summarise this")
	require.NoError(t, err)
	assert.Equal(t, "front page", text)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Auth)
	assert.Equal(t, "test-model", req.Body["model"])
	assert.Equal(t, float64(0), req.Body["temperature"])
	messages, ok := req.Body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]interface{})["role"])
}

func TestGenerateText_Ollama(t *testing.T) {
	server, requests := completionServer(t, http.StatusOK, "ok")

	client, err := NewClient(Config{Type: "Ollama", BaseURL: server.URL + "/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultOllamaModel, client.Model())

	_, err = client.GenerateText(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", (*requests)[0].Path)
}

func TestGenerateText_Anthropic(t *testing.T) {
	server, requests := completionServer(t, http.StatusOK, "ok")

	client, err := NewClient(Config{Type: "anthropic", BaseURL: server.URL + "/v1/", APIKey: "key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultClaudeModel, client.Model())

	_, err = client.GenerateText(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "key", (*requests)[0].APIKey)
}

func TestGenerateText_HTTPError(t *testing.T) {
	server, requests := completionServer(t, http.StatusUnauthorized, "bad key")

	client, err := NewClient(Config{Type: "openai", BaseURL: server.URL + "/v1/", APIKey: "sk-test", MaxRetries: -1}, nil)
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), "hi")
	require.Error(t, err)

	var apiErr *coreerrors.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "openai", apiErr.API)
	assert.Len(t, *requests, 1)
}

func TestGenerateText_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client, err := NewClient(Config{Type: "openai", BaseURL: server.URL + "/v1/", APIKey: "sk", MaxRetries: -1}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GenerateText(ctx, "hi")
	assert.Error(t, err)
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"unknown provider", Config{Type: "gemini", APIKey: "k"}, "front_page.provider.type"},
		{"openai without key", Config{Type: "openai"}, "front_page.provider.api_key"},
		{"anthropic without key", Config{Type: "anthropic"}, "front_page.provider.api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, nil)
			var validation *coreerrors.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{Type: "openai", APIKey: "sk"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIModel, client.Model())

	client, err = NewClient(Config{Type: "ollama"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultOllamaModel, client.Model())
}
