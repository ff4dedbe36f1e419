package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldTitle 标题字段名
const FieldTitle = "title"

const batchSchemaURL = "https://todoboard.local/schemas/batch.json"

//go:embed batch.schema.json
var batchSchemaJSON string

var (
	batchSchemaOnce sync.Once
	batchSchema     *jsonschema.Schema
	batchSchemaErr  error
)

// ValidationResult 校验结果
type ValidationResult struct {
	Errors map[string]string
}

// Valid 是否通过校验
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err 转换为 error，通过时返回 nil
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Fields: r.Errors}
}

func (r *ValidationResult) add(field, message string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	if _, exists := r.Errors[field]; !exists {
		r.Errors[field] = message
	}
}

// RequireNonEmpty 校验字段非空（空白字符串视为空）
func RequireNonEmpty(field, value string) ValidationResult {
	var result ValidationResult
	if strings.TrimSpace(value) == "" {
		result.add(field, requiredMessage(field))
	}
	return result
}

// ValidateBatch 使用 JSON Schema 校验批量请求体并解码
// 返回的 error 仅表示 schema 本身不可用；请求体不合法通过 ValidationResult 表达
func ValidateBatch(body []byte) (Batch, ValidationResult, error) {
	var result ValidationResult

	schema, err := compiledBatchSchema()
	if err != nil {
		return Batch{}, result, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return Batch{}, result, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		result.add("body", "请求体不是合法的 JSON")
		return Batch{}, result, nil
	}

	if err := schema.Validate(doc); err != nil {
		collectSchemaErrors(err, &result)
		return Batch{}, result, nil
	}

	var batch Batch
	if err := json.Unmarshal(body, &batch); err != nil {
		result.add("body", err.Error())
		return Batch{}, result, nil
	}
	return batch, result, nil
}

// compiledBatchSchema 编译并缓存批量请求 schema
func compiledBatchSchema() (*jsonschema.Schema, error) {
	batchSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(batchSchemaURL, strings.NewReader(batchSchemaJSON)); err != nil {
			batchSchemaErr = fmt.Errorf("add batch schema: %w", err)
			return
		}
		batchSchema, batchSchemaErr = compiler.Compile(batchSchemaURL)
		if batchSchemaErr != nil {
			batchSchemaErr = fmt.Errorf("compile batch schema: %w", batchSchemaErr)
		}
	})
	return batchSchema, batchSchemaErr
}

// collectSchemaErrors 递归收集叶子错误
func collectSchemaErrors(err error, result *ValidationResult) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.add("body", err.Error())
		return
	}
	walkSchemaError(ve, result)
	if result.Valid() {
		result.add("body", ve.Message)
	}
}

func walkSchemaError(ve *jsonschema.ValidationError, result *ValidationResult) {
	if len(ve.Causes) == 0 {
		field := pointerToField(ve.InstanceLocation)
		if lastSegment(field) == FieldTitle {
			result.add(field, requiredMessage(FieldTitle))
			return
		}
		result.add(field, ve.Message)
		return
	}
	for _, cause := range ve.Causes {
		walkSchemaError(cause, result)
	}
}

// pointerToField 将 JSON Pointer 转换为点分字段名，如 /updates/0/title -> updates.0.title
func pointerToField(pointer string) string {
	trimmed := strings.TrimPrefix(pointer, "/")
	if trimmed == "" {
		return "body"
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}

func lastSegment(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}

func requiredMessage(field string) string {
	if field == FieldTitle {
		return "标题为必填项"
	}
	return field + " 为必填项"
}
