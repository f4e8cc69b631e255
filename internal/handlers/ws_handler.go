package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/models"
)

// WSHandler WebSocket分析处理器，每帧独立处理，不保留会话状态
type WSHandler struct {
	service  Analyzer
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewWSHandler 创建WebSocket处理器
func NewWSHandler(service Analyzer, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log.With("handler", "WSHandler"),
	}
}

// HandleWebSocket GET /ws/analyze
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("升级WebSocket连接失败", "error", err.Error())
		return
	}
	defer ws.Close()

	h.log.Debug("WebSocket连接建立", "remote", c.ClientIP())
	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("读取WebSocket消息失败", "error", err.Error())
			}
			return
		}

		var resp models.WSResultFrame
		if messageType != websocket.TextMessage {
			resp = errorFrame(models.ErrorDetail{Message: "只支持文本帧", Code: CodeBadRequest})
		} else {
			resp = h.handleFrame(c, data)
		}

		if err := ws.WriteJSON(resp); err != nil {
			h.log.Warn("发送WebSocket响应失败", "error", err.Error())
			return
		}
	}
}

// handleFrame 处理一帧请求，结果和错误都以帧返回
func (h *WSHandler) handleFrame(c *gin.Context, data []byte) models.WSResultFrame {
	var frame models.WSAnalyzeFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return errorFrame(badRequest(err).Error)
	}
	if len(frame.Request) == 0 {
		return errorFrame(badRequest(fmt.Errorf("缺少request字段")).Error)
	}

	ctx := c.Request.Context()
	var (
		result any
		err    error
	)
	switch frame.Version {
	case "", models.VersionV1:
		req := models.NewAnalyzeRequest()
		if err := json.Unmarshal(frame.Request, &req); err != nil {
			return errorFrame(badRequest(err).Error)
		}
		result, err = h.service.Analyze(ctx, req)
	case models.VersionV2:
		req := models.NewAnalyzeRequestV2()
		if err := json.Unmarshal(frame.Request, &req); err != nil {
			return errorFrame(badRequest(err).Error)
		}
		result, err = h.service.AnalyzeV2(ctx, req)
	default:
		return errorFrame(badRequest(fmt.Errorf("不支持的版本: %s", frame.Version)).Error)
	}

	if err != nil {
		status, body := errorStatus(err)
		h.log.Info("WebSocket分析失败", "status", status, "code", body.Error.Code)
		return errorFrame(body.Error)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return errorFrame(models.ErrorDetail{Message: "序列化响应失败: " + err.Error(), Code: "internal_error"})
	}
	return models.WSResultFrame{Type: models.WSFrameResult, Data: out}
}

func errorFrame(detail models.ErrorDetail) models.WSResultFrame {
	return models.WSResultFrame{Type: models.WSFrameError, Error: &detail}
}
