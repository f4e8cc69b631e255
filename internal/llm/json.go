package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// cleanJSONResponse 去掉markdown代码块包裹
func cleanJSONResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```JSON")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}

// ParseObject 把模型输出解析为JSON对象，数组、标量或多余内容都视为失败
func ParseObject(text string) (map[string]any, error) {
	cleaned := cleanJSONResponse(text)
	if cleaned == "" {
		return nil, errors.New("模型输出为空")
	}
	if !strings.HasPrefix(cleaned, "{") {
		return nil, fmt.Errorf("模型输出不是JSON对象: %s", truncate(cleaned, 80))
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, fmt.Errorf("解析模型JSON失败: %w", err)
	}
	if obj == nil {
		return nil, errors.New("模型输出不是JSON对象")
	}
	return obj, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
