package llm

import (
	"context"
	"fmt"

	"koi_fox_mini/internal/clients/gemini"
	"koi_fox_mini/internal/clients/ollama"
	"koi_fox_mini/internal/clients/openai"
	"koi_fox_mini/internal/config"
	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/models"
)

// NewGenerator 按配置选择生成后端，返回后端实例和实际使用的类型。
// 托管后端缺少密钥时回退到mock。
func NewGenerator(ctx context.Context, cfg *config.Config, log *logger.Logger) (models.Generator, string, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch cfg.LLM.Provider {
	case config.ProviderOllama:
		client := ollama.NewClient(ollama.Config{
			Host:      cfg.Ollama.Host,
			Model:     cfg.Ollama.Model,
			MaxTokens: cfg.Ollama.MaxTokens,
			Timeout:   cfg.LLM.Timeout,
		})
		log.Info("使用生成后端", "provider", config.ProviderOllama, "model", client.Model())
		return NewRepairingGenerator(client, config.ProviderOllama, cfg.LLM.Temperature, log), config.ProviderOllama, nil

	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			log.Warn("未配置OPENAI_API_KEY，回退到mock后端")
			return NewMockGenerator(), config.ProviderMock, nil
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, "", fmt.Errorf("创建OpenAI客户端失败: %w", err)
		}
		log.Info("使用生成后端", "provider", config.ProviderOpenAI, "model", client.Model())
		return NewRepairingGenerator(client, config.ProviderOpenAI, cfg.LLM.Temperature, log), config.ProviderOpenAI, nil

	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			log.Warn("未配置GEMINI_API_KEY，回退到mock后端")
			return NewMockGenerator(), config.ProviderMock, nil
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, "", err
		}
		log.Info("使用生成后端", "provider", config.ProviderGemini, "model", client.Model())
		return NewRepairingGenerator(client, config.ProviderGemini, cfg.LLM.Temperature, log), config.ProviderGemini, nil

	case config.ProviderMock, "":
		return NewMockGenerator(), config.ProviderMock, nil

	default:
		return nil, "", fmt.Errorf("%w: %s", config.ErrUnknownProvider, cfg.LLM.Provider)
	}
}
