package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"koi_fox_mini/internal/models"
)

// normalizeRequest 空值填默认值，内容本身不做改动
func normalizeRequest(req models.AnalyzeRequest) models.AnalyzeRequest {
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = models.DefaultSessionID
	}
	return req
}

func normalizeRequestV2(req models.AnalyzeRequestV2) models.AnalyzeRequestV2 {
	req.AnalyzeRequest = normalizeRequest(req.AnalyzeRequest)
	if req.GoalSpec.GoalType == "" {
		req.GoalSpec.GoalType = models.GoalTypeOther
	}
	if strings.TrimSpace(req.GoalSpec.Relationship) == "" {
		req.GoalSpec.Relationship = models.DefaultRelationship
	}
	return req
}

// validateRequest 校验请求字段，失败返回InputError；旋钮越界直接拒绝，不做截断
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInputError(nil, "请求校验失败: %v", err)
	}

	fields := make([]string, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe)
		fields = append(fields, path)
		msgs = append(msgs, describeFieldError(path, fe))
	}
	return models.NewInputError(fields, "%s", strings.Join(msgs, "; "))
}

func describeFieldError(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return path + " 不能为空"
	case "gte", "lte":
		return path + " 必须在[0,1]区间内, 实际为 " + formatValue(fe.Value())
	case "oneof":
		return path + " 必须是以下之一: " + fe.Param()
	default:
		return path + " 校验失败: " + fe.Tag()
	}
}

func formatValue(v any) string {
	if f, ok := v.(float64); ok {
		return formatKnob(f)
	}
	return fmt.Sprint(v)
}
