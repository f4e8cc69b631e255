package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"koi_fox_mini/internal/models"
)

// Config Ollama客户端配置
type Config struct {
	Host      string        // Ollama服务器地址（完整URL）
	Model     string        // 使用的模型名称
	MaxTokens int           // 最大生成token数
	Timeout   time.Duration // 单次请求超时
}

// Client Ollama客户端
type Client struct {
	config Config
	client *http.Client
}

// ChatRequest 对话请求参数
type ChatRequest struct {
	Model    string           `json:"model"`            // 模型名称
	Messages []models.Message `json:"messages"`         // 完整对话
	Stream   bool             `json:"stream"`           // 是否流式输出，这里固定为false
	Format   string           `json:"format,omitempty"` // 输出格式，json表示要求JSON
	Options  Options          `json:"options"`          // 可选参数
}

// Options 生成选项
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // 温度参数，0需要显式发送
	TopP        float64  `json:"top_p,omitempty"`       // Top-p采样
	TopK        int      `json:"top_k,omitempty"`       // Top-k采样
	NumPredict  int      `json:"num_predict,omitempty"` // 最大生成token数
}

// ChatResponse 对话响应
type ChatResponse struct {
	Model           string         `json:"model"`             // 模型名称
	CreatedAt       string         `json:"created_at"`        // 创建时间
	Message         models.Message `json:"message"`           // 生成的消息
	Done            bool           `json:"done"`              // 是否完成
	TotalDuration   int64          `json:"total_duration"`    // 总耗时(纳秒)
	PromptEvalCount int            `json:"prompt_eval_count"` // 提示词评估数量
	EvalCount       int            `json:"eval_count"`        // 评估数量
}

// HTTPError 服务器返回的非200响应
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Ollama服务器返回错误(%d): %s", e.StatusCode, e.Body)
}

// NewClient 创建新的Ollama客户端
func NewClient(config Config) *Client {
	config.Host = strings.TrimRight(config.Host, "/")
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Model 返回模型名称
func (c *Client) Model() string {
	return c.config.Model
}

// ChatRaw 发送对话请求并返回完整响应
func (c *Client) ChatRaw(ctx context.Context, messages []models.Message, options Options) (*ChatResponse, error) {
	if options.NumPredict == 0 {
		options.NumPredict = c.config.MaxTokens
	}

	// 准备请求体
	reqBody := ChatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
		Options:  options,
	}

	// 序列化请求体
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.config.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	// 检查响应状态码
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	return &response, nil
}

// Chat 发送对话并返回助手回复文本
func (c *Client) Chat(ctx context.Context, messages []models.Message, temperature float64) (string, error) {
	resp, err := c.ChatRaw(ctx, messages, Options{Temperature: &temperature})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}
