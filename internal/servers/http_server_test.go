package servers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koi_fox_mini/internal/config"
	"koi_fox_mini/internal/llm"
	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/personas"
	"koi_fox_mini/internal/services"
)

func newTestServer(cfg *config.Config) *HTTPServer {
	svc := services.NewAnalysisService(personas.NewRegistry(), llm.NewMockGenerator(), logger.Nop())
	return NewHTTPServer(cfg, svc, logger.Nop())
}

func TestHTTPServer_Routes(t *testing.T) {
	s := newTestServer(config.Default())
	assert.Equal(t, "127.0.0.1:8000", s.Addr())

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/personas", "", http.StatusOK},
		{http.MethodPost, "/analyze", `{"conversation":"c","user_draft":"d","koi_persona_id":"koi_entrepreneur_driver","fox_persona_id":"fox_workplace_leader"}`, http.StatusOK},
		{http.MethodPost, "/v2/analyze", `{}`, http.StatusBadRequest},
		{http.MethodGet, "/missing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	}
}

func TestHTTPServer_StartStop(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 18765
	s := newTestServer(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.NoError(t, <-errCh)
}
