package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"koi_fox_mini/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)
}

func TestClient_Chat(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":true}"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", Model: "gemini-test", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	text, err := client.Chat(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "u"},
		{Role: models.RoleAssistant, Content: "bad"},
		{Role: models.RoleUser, Content: "fix"},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	assert.Len(t, contents, 3)
	assert.Contains(t, body, "systemInstruction")
}

func TestClient_ChatHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"message":"bad key","status":"UNAUTHENTICATED"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", Model: "gemini-test", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []models.Message{{Role: models.RoleUser, Content: "u"}}, 0.2)
	assert.Error(t, err)
}
