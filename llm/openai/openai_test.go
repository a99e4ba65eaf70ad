package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pagevisuals/llm"
)

const completion = `{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"It is a report."}}]}`

func server(t *testing.T, body *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var body map[string]any
	srv := server(t, &body)
	c := New("key", "", WithBaseURL(srv.URL+"/"), WithMaxRetries(0))
	assert.Equal(t, DefaultModel, c.Model())

	got, err := c.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: []llm.Part{llm.TextPart("be brief")}},
		{Role: llm.RoleUser, Content: []llm.Part{
			llm.TextPart("excerpt"),
			llm.ImagePart("data:image/png;base64,AA==", llm.DetailAuto),
		}},
		{Role: llm.RoleAssistant, Content: []llm.Part{llm.TextPart("earlier")}},
		{Role: llm.RoleUser, Content: []llm.Part{llm.TextPart("and?")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "It is a report.", got)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

	parts := msgs[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	img := parts[1].(map[string]any)
	assert.Equal(t, "image_url", img["type"])
	assert.Equal(t, map[string]any{"url": "data:image/png;base64,AA==", "detail": "auto"}, img["image_url"])

	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
	assert.Equal(t, "and?", msgs[3].(map[string]any)["content"])
}

func TestCompleteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := New("key", "gpt-4o-mini", WithBaseURL(srv.URL+"/"), WithMaxRetries(0))
	_, err := c.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: []llm.Part{llm.TextPart("hi")}},
	})
	assert.Error(t, err)
}
