// Package ws 连接远端Koi & Fox服务的WebSocket客户端
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"koi_fox_mini/internal/models"
)

// ErrNotConnected 未连接
var ErrNotConnected = errors.New("WebSocket未连接")

// Config WebSocket客户端配置
type Config struct {
	URL              string            // 服务端地址，如 ws://127.0.0.1:8000/ws/analyze
	Headers          map[string]string // 自定义请求头
	HandshakeTimeout time.Duration     // 握手超时
}

// RemoteError 服务端返回的错误帧
type RemoteError struct {
	Code    string
	Message string
	Fields  []string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client WebSocket客户端，一次只有一个请求在途
type Client struct {
	url     string
	headers http.Header
	dialer  websocket.Dialer

	conn     *websocket.Conn
	connLock sync.Mutex
}

// NewClient 创建WebSocket客户端
func NewClient(config Config) *Client {
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	headers := http.Header{}
	for k, v := range config.Headers {
		headers.Set(k, v)
	}
	return &Client{
		url:     config.URL,
		headers: headers,
		dialer:  websocket.Dialer{HandshakeTimeout: config.HandshakeTimeout},
	}
}

// Connect 连接到WebSocket服务器
func (c *Client) Connect(ctx context.Context) error {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	u, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("解析URL失败: %w", err)
	}
	conn, _, err := c.dialer.DialContext(ctx, u.String(), c.headers)
	if err != nil {
		return fmt.Errorf("连接WebSocket失败: %w", err)
	}
	c.conn = conn
	return nil
}

// Close 发送关闭帧并关闭连接
func (c *Client) Close() error {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Analyze 发送一帧分析请求并等待对应的结果帧，返回结果帧中的data
func (c *Client) Analyze(ctx context.Context, version string, request any) (json.RawMessage, error) {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("请求序列化失败: %w", err)
	}

	// 没有deadline时为零值，即不超时
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	if err := c.conn.WriteJSON(models.WSAnalyzeFrame{Version: version, Request: body}); err != nil {
		return nil, fmt.Errorf("消息发送失败: %w", err)
	}

	var frame models.WSResultFrame
	if err := c.conn.ReadJSON(&frame); err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	switch frame.Type {
	case models.WSFrameResult:
		return frame.Data, nil
	case models.WSFrameError:
		if frame.Error == nil {
			return nil, &RemoteError{Code: "unknown", Message: "错误帧缺少error字段"}
		}
		return nil, &RemoteError{Code: frame.Error.Code, Message: frame.Error.Message, Fields: frame.Error.Fields}
	default:
		return nil, fmt.Errorf("未知的帧类型: %q", frame.Type)
	}
}
