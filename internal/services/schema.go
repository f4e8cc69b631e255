package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"koi_fox_mini/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// DecodeStrict 把后端返回的对象严格解码为T：
// 缺字段、null、多余字段、类型不符或取值越界都返回SchemaMismatch
func DecodeStrict[T any](module models.Module, raw map[string]any) (T, error) {
	var out T

	missing, extra := fieldDiff(reflect.TypeOf(out), raw, "")
	if len(missing) > 0 || len(extra) > 0 {
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "缺少字段: "+strings.Join(missing, ", "))
		}
		if len(extra) > 0 {
			parts = append(parts, "多余字段: "+strings.Join(extra, ", "))
		}
		return out, models.NewSchemaError(module, append(missing, extra...), errors.New(strings.Join(parts, "; ")))
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return out, models.NewSchemaError(module, nil, fmt.Errorf("重新编码失败: %w", err))
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, models.NewSchemaError(module, []string{typeErr.Field},
				fmt.Errorf("字段 %s 类型错误: 期望 %s, 实际 %s", typeErr.Field, typeErr.Type, typeErr.Value))
		}
		return out, models.NewSchemaError(module, nil, err)
	}

	if err := validate.Struct(out); err != nil {
		fields := validationFields(err)
		return out, models.NewSchemaError(module, fields, fmt.Errorf("字段取值不合法: %s", strings.Join(fields, ", ")))
	}
	return out, nil
}

// fieldDiff 按json标签比较结构体和原始对象，返回缺失和多余的字段路径
func fieldDiff(t reflect.Type, raw map[string]any, prefix string) (missing, extra []string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	known := make(map[string]bool, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonFieldName(f)
		if name == "" || !f.IsExported() {
			continue
		}
		known[name] = true
		path := prefix + name

		v, ok := raw[name]
		if !ok || v == nil {
			missing = append(missing, path)
			continue
		}

		ft := f.Type
		switch {
		case ft.Kind() == reflect.Struct:
			if m, ok := v.(map[string]any); ok {
				mi, ex := fieldDiff(ft, m, path+".")
				missing = append(missing, mi...)
				extra = append(extra, ex...)
			}
		case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.Struct:
			items, _ := v.([]any)
			for idx, item := range items {
				if m, ok := item.(map[string]any); ok {
					mi, ex := fieldDiff(ft.Elem(), m, fmt.Sprintf("%s[%d].", path, idx))
					missing = append(missing, mi...)
					extra = append(extra, ex...)
				}
			}
		}
	}

	for k := range raw {
		if !known[k] {
			extra = append(extra, prefix+k)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return missing, extra
}

// validationFields 取出校验失败的字段路径，去掉顶层类型名
func validationFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe))
	}
	return fields
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.TrimPrefix(ns, "AnalyzeRequest.")
}
