package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind 分析错误类别
type ErrorKind string

const (
	// KindInput 客户端输入错误：未知人设、旋钮越界等，不会调用后端
	KindInput ErrorKind = "invalid_input"
	// KindBackend 生成后端的传输、超时或鉴权失败
	KindBackend ErrorKind = "backend_failure"
	// KindParse 修复重试后输出仍不是合法的JSON对象
	KindParse ErrorKind = "parse_failure"
	// KindSchema JSON缺字段、类型错误或包含多余字段
	KindSchema ErrorKind = "schema_mismatch"
)

// ErrorDetail 对外的错误详情，code为错误类别或bad_request
type ErrorDetail struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"`
}

// ErrorResponse HTTP错误响应
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrPersonaNotFound 人设不存在
var ErrPersonaNotFound = errors.New("人设不存在")

// AnalysisError 分析流程中的错误，所有类别都会终止整个请求
type AnalysisError struct {
	Kind   ErrorKind
	Module Module   // 出错的模块，输入错误时为空
	Fields []string // 涉及的字段
	Err    error
}

func (e *AnalysisError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Module != "" {
		b.WriteString("[" + string(e.Module) + "]")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// NewInputError 创建输入错误
func NewInputError(fields []string, format string, args ...any) *AnalysisError {
	return &AnalysisError{Kind: KindInput, Fields: fields, Err: fmt.Errorf(format, args...)}
}

// NewBackendError 包装后端错误
func NewBackendError(module Module, err error) *AnalysisError {
	return &AnalysisError{Kind: KindBackend, Module: module, Err: err}
}

// NewParseError 包装解析失败
func NewParseError(err error) *AnalysisError {
	return &AnalysisError{Kind: KindParse, Err: err}
}

// NewSchemaError 创建结构不匹配错误
func NewSchemaError(module Module, fields []string, err error) *AnalysisError {
	return &AnalysisError{Kind: KindSchema, Module: module, Fields: fields, Err: err}
}

// KindOf 返回错误类别，非AnalysisError一律视为后端错误
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindBackend
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
