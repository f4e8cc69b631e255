package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/models"
	"koi_fox_mini/internal/personas"
)

// AnalysisService 编排Koi和Fox两次后端调用并合并结果
type AnalysisService struct {
	registry  *personas.Registry
	generator models.Generator
	log       *logger.Logger
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(registry *personas.Registry, generator models.Generator, log *logger.Logger) *AnalysisService {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisService{
		registry:  registry,
		generator: generator,
		log:       log.With("service", "AnalysisService"),
	}
}

// Personas 返回对外展示的人设列表
func (s *AnalysisService) Personas() []models.PersonaItem {
	return s.registry.Items()
}

// Analyze 推断目标的分析（v1）
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	req = normalizeRequest(req)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	koi, fox, err := runAnalysis[models.KoiOutput](ctx, s, analysisPlan{
		version:     "v1",
		request:     req,
		payload:     func() string { return BuildPayload(req) },
		koiContract: koiContractV1,
	})
	if err != nil {
		return nil, err
	}
	return &models.AnalyzeResponse{Koi: koi, Fox: fox}, nil
}

// AnalyzeV2 基于用户显式目标的分析（v2）
func (s *AnalysisService) AnalyzeV2(ctx context.Context, req models.AnalyzeRequestV2) (*models.AnalyzeResponseV2, error) {
	req = normalizeRequestV2(req)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	koi, fox, err := runAnalysis[models.KoiOutputV2](ctx, s, analysisPlan{
		version:     "v2",
		request:     req.AnalyzeRequest,
		payload:     func() string { return BuildPayloadV2(req) },
		koiContract: koiContractV2,
	})
	if err != nil {
		return nil, err
	}
	return &models.AnalyzeResponseV2{Koi: koi, Fox: fox}, nil
}

// analysisPlan v1和v2之间唯一不同的部分：载荷和Koi的输出约定
type analysisPlan struct {
	version     string
	request     models.AnalyzeRequest
	payload     func() string
	koiContract string
}

func runAnalysis[K any](ctx context.Context, s *AnalysisService, plan analysisPlan) (K, models.FoxOutput, error) {
	var (
		koi K
		fox models.FoxOutput
	)
	start := time.Now()
	req := plan.request
	log := s.log.With("version", plan.version, "session_id", req.SessionID)

	ctx, span := otel.Tracer("koi_fox_mini/services").Start(ctx, "analysis.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("analysis.version", plan.version),
		attribute.String("analysis.koi_persona", req.KoiPersonaID),
		attribute.String("analysis.fox_persona", req.FoxPersonaID),
	)
	fail := func(err error) (K, models.FoxOutput, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(models.KindOf(err)))
		log.Warn("分析失败", "kind", models.KindOf(err), "error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds())
		return koi, fox, err
	}

	// 1. 解析人设，失败时不会调用后端
	koiPersona, err := s.resolvePersona("koi_persona_id", req.KoiPersonaID, models.ModuleKoi)
	if err != nil {
		return fail(err)
	}
	foxPersona, err := s.resolvePersona("fox_persona_id", req.FoxPersonaID, models.ModuleFox)
	if err != nil {
		return fail(err)
	}

	// 2. 载荷只构建一次，两次调用看到的内容完全一致
	payload := plan.payload()

	// 3. 并发调用，任一失败即取消另一方
	var koiRaw, foxRaw map[string]any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.generate(gctx, models.ModuleKoi, systemInstruction(koiPersona, plan.koiContract), payload)
		koiRaw = raw
		return err
	})
	g.Go(func() error {
		raw, err := s.generate(gctx, models.ModuleFox, systemInstruction(foxPersona, foxContract), payload)
		foxRaw = raw
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	// 4. 严格校验
	if koi, err = DecodeStrict[K](models.ModuleKoi, koiRaw); err != nil {
		return fail(err)
	}
	if fox, err = DecodeStrict[models.FoxOutput](models.ModuleFox, foxRaw); err != nil {
		return fail(err)
	}

	log.Info("分析完成",
		"koi_persona", koiPersona.ID,
		"fox_persona", foxPersona.ID,
		"reply_options", len(fox.ReplyOptions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return koi, fox, nil
}

// resolvePersona 查找人设并确认模块匹配
func (s *AnalysisService) resolvePersona(field, id string, module models.Module) (models.Persona, error) {
	p, err := s.registry.Get(id)
	if err != nil {
		return p, &models.AnalysisError{Kind: models.KindInput, Fields: []string{field}, Err: errors.Unwrap(err)}
	}
	if p.Module != module {
		return p, models.NewInputError([]string{field}, "人设 %s 属于 %s 模块, 不能用作 %s", id, p.Module, module)
	}
	return p, nil
}

// generate 调用后端，错误统一标记所属模块
func (s *AnalysisService) generate(ctx context.Context, module models.Module, system, payload string) (map[string]any, error) {
	raw, err := s.generator.GenerateJSON(ctx, system, payload)
	if err != nil {
		var ae *models.AnalysisError
		if errors.As(err, &ae) {
			tagged := *ae
			if tagged.Module == "" {
				tagged.Module = module
			}
			return nil, &tagged
		}
		return nil, models.NewBackendError(module, err)
	}
	if raw == nil {
		return nil, &models.AnalysisError{Kind: models.KindParse, Module: module, Err: fmt.Errorf("%s模块后端返回空对象", module)}
	}
	return raw, nil
}
