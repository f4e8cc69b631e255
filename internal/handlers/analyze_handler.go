package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/models"
)

// Analyzer 分析服务接口
type Analyzer interface {
	Personas() []models.PersonaItem
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error)
	AnalyzeV2(ctx context.Context, req models.AnalyzeRequestV2) (*models.AnalyzeResponseV2, error)
}

// AnalyzeHandler 分析相关的HTTP处理器
type AnalyzeHandler struct {
	service Analyzer
	log     *logger.Logger
}

// NewAnalyzeHandler 创建分析处理器
func NewAnalyzeHandler(service Analyzer, log *logger.Logger) *AnalyzeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalyzeHandler{service: service, log: log.With("handler", "AnalyzeHandler")}
}

// ListPersonas GET /personas
func (h *AnalyzeHandler) ListPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, models.PersonaListResponse{Personas: h.service.Personas()})
}

// Analyze POST /analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	req := models.NewAnalyzeRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug("解析请求失败", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusBadRequest, badRequest(err))
		return
	}

	resp, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzeV2 POST /v2/analyze
func (h *AnalyzeHandler) AnalyzeV2(c *gin.Context) {
	req := models.NewAnalyzeRequestV2()
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug("解析请求失败", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusBadRequest, badRequest(err))
		return
	}

	resp, err := h.service.AnalyzeV2(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyzeHandler) respondError(c *gin.Context, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("分析请求失败", "path", c.FullPath(), "status", status, "code", body.Error.Code, "error", err.Error())
	} else {
		h.log.Info("分析请求被拒绝", "path", c.FullPath(), "code", body.Error.Code, "fields", body.Error.Fields)
	}
	c.JSON(status, body)
}
