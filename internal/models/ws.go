package models

import "encoding/json"

// WebSocket帧类型
const (
	WSFrameResult = "result"
	WSFrameError  = "error"
)

// 分析版本
const (
	VersionV1 = "v1"
	VersionV2 = "v2"
)

// WSAnalyzeFrame 客户端发送的一帧分析请求
type WSAnalyzeFrame struct {
	Version string          `json:"version"` // v1或v2，为空按v1处理
	Request json.RawMessage `json:"request"`
}

// WSResultFrame 服务端返回的一帧，Data和Error二选一
type WSResultFrame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorDetail    `json:"error,omitempty"`
}
