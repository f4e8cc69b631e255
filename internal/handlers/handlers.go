package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"koi_fox_mini/internal/models"
)

// ServiceName 服务名称
const ServiceName = "koi_fox_mini"

// CodeBadRequest 请求体无法解析
const CodeBadRequest = "bad_request"

// Root 根路由
func Root(c *gin.Context) {
	c.String(http.StatusOK, "Koi & Fox Server Running")
}

// Health 健康检查
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// errorStatus 把分析错误映射为HTTP状态码和错误响应
func errorStatus(err error) (int, models.ErrorResponse) {
	detail := models.ErrorDetail{Message: err.Error(), Code: string(models.KindOf(err))}

	var ae *models.AnalysisError
	if errors.As(err, &ae) {
		detail.Fields = ae.Fields
		if ae.Kind == models.KindInput && ae.Err != nil {
			detail.Message = ae.Err.Error()
		}
	}

	switch models.KindOf(err) {
	case models.KindInput:
		return http.StatusBadRequest, models.ErrorResponse{Error: detail}
	case models.KindBackend:
		if isTimeout(err) {
			return http.StatusGatewayTimeout, models.ErrorResponse{Error: detail}
		}
		return http.StatusBadGateway, models.ErrorResponse{Error: detail}
	default:
		return http.StatusBadGateway, models.ErrorResponse{Error: detail}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func badRequest(err error) models.ErrorResponse {
	return models.ErrorResponse{Error: models.ErrorDetail{Message: "请求体格式错误: " + err.Error(), Code: CodeBadRequest}}
}
