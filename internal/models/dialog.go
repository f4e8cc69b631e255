package models

import "context"

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 对话消息
type Message struct {
	Role    string `json:"role"`    // 消息角色：system/user/assistant
	Content string `json:"content"` // 消息内容
}

// Generator 生成后端接口
type Generator interface {
	// GenerateJSON 根据系统指令和用户载荷返回解析后的JSON对象
	GenerateJSON(ctx context.Context, system string, payload string) (map[string]any, error)
}
