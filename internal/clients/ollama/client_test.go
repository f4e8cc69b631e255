package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"koi_fox_mini/internal/clients/ollama"
	"koi_fox_mini/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Chat(t *testing.T) {
	var got ollama.ChatRequest

	// 创建测试服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("解析请求体失败: %v", err)
		}

		resp := ollama.ChatResponse{
			Model:     "test-model",
			CreatedAt: time.Now().Format(time.RFC3339),
			Message:   models.Message{Role: models.RoleAssistant, Content: `{"ok":true}`},
			Done:      true,
			EvalCount: 20,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := ollama.NewClient(ollama.Config{Host: server.URL + "/", Model: "test-model", MaxTokens: 512})

	messages := []models.Message{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "hi"},
	}
	text, err := client.Chat(context.Background(), messages, 0)
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	assert.Equal(t, messages, got.Messages)
	assert.Equal(t, 512, got.Options.NumPredict)
	// 温度为0时也必须显式发送
	require.NotNil(t, got.Options.Temperature)
	assert.Equal(t, 0.0, *got.Options.Temperature)
}

func TestClient_ChatErrors(t *testing.T) {
	// 返回500错误
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("服务器内部错误"))
	}))
	defer server.Close()

	client := ollama.NewClient(ollama.Config{Host: server.URL, Model: "test-model"})
	_, err := client.Chat(context.Background(), nil, 0.2)
	require.Error(t, err)

	var httpErr *ollama.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)

	// 测试无效的服务器地址
	invalidClient := ollama.NewClient(ollama.Config{Host: "http://127.0.0.1:1", Model: "test-model"})
	_, err = invalidClient.Chat(context.Background(), nil, 0.2)
	assert.Error(t, err)
}

func TestClient_ChatCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := ollama.NewClient(ollama.Config{Host: server.URL, Model: "test-model"})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := client.Chat(ctx, nil, 0.2)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Chat未在上下文超时后返回")
	}

	// 放开处理函数并断开连接，Close才不会等待活跃连接
	close(release)
	server.CloseClientConnections()
}
