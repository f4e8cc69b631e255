// Package gemini 基于google genai SDK的Gemini对话客户端
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"koi_fox_mini/internal/models"
)

// Config Gemini客户端配置
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // 可选，测试时指向本地服务
	Timeout time.Duration
}

// Client Gemini客户端
type Client struct {
	client *genai.Client
	model  string
}

// NewClient 创建Gemini客户端
func NewClient(ctx context.Context, config Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.New("缺少GEMINI_API_KEY")
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Timeout},
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("创建GenAI客户端失败: %w", err)
	}
	return &Client{client: client, model: config.Model}, nil
}

// Model 返回模型名称
func (c *Client) Model() string {
	return c.model
}

// Chat 发送完整对话，system消息作为SystemInstruction，assistant映射为model角色
func (c *Client) Chat(ctx context.Context, messages []models.Message, temperature float64) (string, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = append(system, m.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(temperature)),
		ResponseMIMEType: "application/json",
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI生成失败: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("GenAI响应中没有文本")
	}
	return text, nil
}
