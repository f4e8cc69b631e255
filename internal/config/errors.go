package config

import "errors"

// 配置相关错误
var (
	ErrInvalidPort        = errors.New("服务器端口必须在1-65535之间")
	ErrUnknownProvider    = errors.New("未知的生成后端")
	ErrInvalidTimeout     = errors.New("后端超时时间不能为负数")
	ErrInvalidTemperature = errors.New("温度参数必须在0-2之间")
	ErrInvalidMaxTokens   = errors.New("Ollama最大生成token数必须大于0")
	ErrInvalidSampleRatio = errors.New("采样率必须在0-1之间")
)
