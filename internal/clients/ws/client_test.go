package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koi_fox_mini/internal/handlers"
	"koi_fox_mini/internal/llm"
	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/models"
	"koi_fox_mini/internal/personas"
	"koi_fox_mini/internal/services"
)

func newAnalyzeServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := services.NewAnalysisService(personas.NewRegistry(), llm.NewMockGenerator(), logger.Nop())
	r := gin.New()
	r.GET("/ws/analyze", handlers.NewWSHandler(svc, logger.Nop()).HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/analyze"
}

func sampleRequest() models.AnalyzeRequest {
	req := models.NewAnalyzeRequest()
	req.Conversation = "Boss asked for status"
	req.UserDraft = "I'll get to it"
	req.KoiPersonaID = "koi_entrepreneur_driver"
	req.FoxPersonaID = "fox_workplace_leader"
	return req
}

func TestClient_Analyze(t *testing.T) {
	srv := newAnalyzeServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := client.Analyze(ctx, models.VersionV1, sampleRequest())
	require.NoError(t, err)
	var resp models.AnalyzeResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Len(t, resp.Fox.ReplyOptions, 3)

	// 同一连接继续发送v2请求
	v2 := models.NewAnalyzeRequestV2()
	v2.AnalyzeRequest = sampleRequest()
	v2.GoalSpec.Goal = "Agree on a delivery date"
	data, err = client.Analyze(ctx, models.VersionV2, v2)
	require.NoError(t, err)
	var respV2 models.AnalyzeResponseV2
	require.NoError(t, json.Unmarshal(data, &respV2))
	assert.InDelta(t, 0.55, respV2.Koi.GoalAlignment, 1e-9)
}

func TestClient_RemoteError(t *testing.T) {
	srv := newAnalyzeServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { client.Close() })

	req := sampleRequest()
	req.FoxPersonaID = "fox_nope"
	_, err := client.Analyze(context.Background(), models.VersionV1, req)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, string(models.KindInput), remote.Code)
	assert.Equal(t, []string{"fox_persona_id"}, remote.Fields)
}

func TestClient_NotConnected(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:1/ws/analyze"})
	_, err := client.Analyze(context.Background(), models.VersionV1, sampleRequest())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, client.Close())
}

func TestClient_ConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	client := NewClient(Config{URL: wsURL(srv), Headers: map[string]string{"X-Request-Id": "abc"}})
	err := client.Connect(context.Background())
	assert.Error(t, err)
}
