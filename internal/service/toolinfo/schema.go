package toolinfo

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://toolhub.wikimedia.org/schema/toolinfo.json"

//go:embed toolinfo.schema.json
var toolinfoSchema string

// Validator toolinfo 记录校验器，编译后可并发使用
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator 编译内置的 toolinfo schema
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(toolinfoSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// MustValidator 同 NewValidator，失败时 panic
func MustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate 校验单条记录，失败时返回 Code 为 schema 的 ValidationError
func (v *Validator) Validate(record any) error {
	payload, err := normalizeValue(record)
	if err != nil {
		return &ValidationError{Code: CodeSchema, Message: err.Error()}
	}

	err = v.schema.Validate(payload)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Code: CodeSchema, Message: err.Error()}
	}
	leaf := deepestCause(ve)
	return &ValidationError{
		Field:   strings.TrimPrefix(leaf.InstanceLocation, "/"),
		Code:    CodeSchema,
		Message: leaf.Message,
	}
}

// deepestCause 沿第一个原因向下，找到最具体的错误
func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// normalizeValue 经过一次 JSON 编解码，保证值只包含 schema 库支持的类型
func normalizeValue(value any) (any, error) {
	var data []byte
	switch v := value.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		data = encoded
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
