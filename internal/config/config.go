// Package config 提供配置加载和管理功能
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 后端类型
const (
	ProviderMock   = "mock"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config 应用程序配置结构
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Ollama  OllamaConfig  `yaml:"ollama"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`
	CORS    CORSConfig    `yaml:"cors"`
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Host            string        `yaml:"host"`             // 服务器监听地址
	Port            int           `yaml:"port"`             // 服务器监听端口
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // 优雅退出等待时间
}

// Addr 返回监听地址
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LLMConfig 生成后端公共配置
type LLMConfig struct {
	Provider    string        `yaml:"provider"`    // mock/ollama/openai/gemini
	Timeout     time.Duration `yaml:"timeout"`     // 单次后端调用超时
	Temperature float64       `yaml:"temperature"` // 首次生成温度，修复重试固定为0
}

// OllamaConfig Ollama配置
type OllamaConfig struct {
	Host      string `yaml:"host"`       // Ollama服务器地址
	Model     string `yaml:"model"`      // 模型名称
	MaxTokens int    `yaml:"max_tokens"` // 最大生成token数
}

// OpenAIConfig OpenAI配置
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// GeminiConfig Gemini配置
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// LogConfig 日志配置
type LogConfig struct {
	Mode string `yaml:"mode"` // dev/prod
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"` // OTLP HTTP地址，为空时输出到stdout
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load 从文件加载配置，文件不存在时使用默认值，随后应用环境变量覆盖
func Load(filename string) (*Config, error) {
	var config Config

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// 没有配置文件时只用默认值和环境变量
		case err != nil:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
		}
	}

	applyEnv(&config, os.Getenv)
	applyDefaults(&config)

	// 验证配置
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &config, nil
}

// applyEnv 环境变量覆盖文件配置
func applyEnv(config *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&config.LLM.Provider, "LLM_PROVIDER")
	set(&config.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&config.OpenAI.Model, "OPENAI_MODEL")
	set(&config.OpenAI.BaseURL, "OPENAI_BASE_URL")
	set(&config.Gemini.APIKey, "GEMINI_API_KEY")
	set(&config.Gemini.Model, "GEMINI_MODEL")
	set(&config.Ollama.Host, "OLLAMA_HOST")
	set(&config.Ollama.Model, "OLLAMA_MODEL")
	set(&config.Log.Mode, "LOG_MODE")

	if v := strings.TrimSpace(getenv("SERVER_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	switch strings.ToLower(strings.TrimSpace(getenv("OTEL_ENABLED"))) {
	case "1", "true", "yes", "on":
		config.Tracing.Enabled = true
	}
	config.LLM.Provider = strings.ToLower(config.LLM.Provider)
}

// applyDefaults 设置默认值
func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8000
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}
	if config.LLM.Provider == "" {
		config.LLM.Provider = ProviderMock
	}
	if config.LLM.Timeout == 0 {
		config.LLM.Timeout = 60 * time.Second
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.2
	}
	if config.Ollama.Host == "" {
		config.Ollama.Host = "http://127.0.0.1:11434"
	}
	if config.Ollama.Model == "" {
		config.Ollama.Model = "qwen2.5:7b"
	}
	if config.Ollama.MaxTokens == 0 {
		config.Ollama.MaxTokens = 2048
	}
	if config.OpenAI.BaseURL == "" {
		config.OpenAI.BaseURL = "https://api.openai.com"
	}
	config.OpenAI.BaseURL = strings.TrimRight(config.OpenAI.BaseURL, "/")
	if config.OpenAI.Model == "" {
		config.OpenAI.Model = "gpt-4o-mini"
	}
	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.5-flash"
	}
	if config.Log.Mode == "" {
		config.Log.Mode = "dev"
	}
	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = "koi-fox"
	}
	if config.Tracing.SampleRatio == 0 {
		config.Tracing.SampleRatio = 1
	}
	if len(config.CORS.AllowOrigins) == 0 {
		config.CORS.AllowOrigins = []string{"*"}
	}
}

// validateConfig 验证配置是否有效
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	switch config.LLM.Provider {
	case ProviderMock, ProviderOllama, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, config.LLM.Provider)
	}
	if config.LLM.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return fmt.Errorf("%w: %v", ErrInvalidTemperature, config.LLM.Temperature)
	}

	if config.Ollama.MaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}
	if config.Tracing.SampleRatio < 0 || config.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Tracing.SampleRatio)
	}

	return nil
}
