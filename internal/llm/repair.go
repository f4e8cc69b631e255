package llm

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/models"
)

// RepairInstruction 首次输出无法解析时追加的纠正指令
const RepairInstruction = "Your previous reply was not a valid JSON object. " +
	"Return ONLY one valid JSON object with exactly the requested fields. No markdown. No commentary."

// ChatClient 能接收完整对话并返回文本的后端
type ChatClient interface {
	Chat(ctx context.Context, messages []models.Message, temperature float64) (string, error)
}

// RepairingGenerator 把自由文本后端包装成Generator，
// 首次输出不是JSON对象时带着完整对话再以温度0重试一次
type RepairingGenerator struct {
	client      ChatClient
	provider    string
	temperature float64
	log         *logger.Logger
}

// NewRepairingGenerator 创建带修复重试的生成后端
func NewRepairingGenerator(client ChatClient, provider string, temperature float64, log *logger.Logger) *RepairingGenerator {
	if log == nil {
		log = logger.Nop()
	}
	return &RepairingGenerator{
		client:      client,
		provider:    provider,
		temperature: temperature,
		log:         log.With("service", "RepairingGenerator", "provider", provider),
	}
}

// GenerateJSON 实现models.Generator
func (g *RepairingGenerator) GenerateJSON(ctx context.Context, system string, payload string) (map[string]any, error) {
	ctx, span := otel.Tracer("koi_fox_mini/llm").Start(ctx, "llm.GenerateJSON",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("llm.provider", g.provider))

	messages := []models.Message{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: payload},
	}

	text, err := g.client.Chat(ctx, messages, g.temperature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend")
		return nil, models.NewBackendError("", err)
	}

	obj, parseErr := ParseObject(text)
	if parseErr == nil {
		span.SetAttributes(attribute.Bool("llm.repaired", false))
		return obj, nil
	}

	g.log.Warn("模型输出不是JSON，进行修复重试", "error", parseErr.Error())
	span.SetAttributes(attribute.Bool("llm.repaired", true))

	messages = append(messages,
		models.Message{Role: models.RoleAssistant, Content: text},
		models.Message{Role: models.RoleUser, Content: RepairInstruction},
	)
	text, err = g.client.Chat(ctx, messages, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend")
		return nil, models.NewBackendError("", err)
	}

	obj, parseErr = ParseObject(text)
	if parseErr != nil {
		span.RecordError(parseErr)
		span.SetStatus(codes.Error, "parse")
		return nil, models.NewParseError(fmt.Errorf("修复重试后仍无法解析: %w", parseErr))
	}
	return obj, nil
}
