package toolinfo

import (
	"errors"
	"fmt"
)

// 校验错误码
const (
	// CodeInvariant 试图修改创建后不可变的字段
	CodeInvariant = "invariant"
	// CodeSchema 记录不符合 toolinfo schema
	CodeSchema = "schema"
	// CodeInvalid 其他非法输入
	CodeInvalid = "invalid"
)

var (
	ErrNotFound   = errors.New("tool not found")
	ErrToolExists = errors.New("tool already exists")
)

// ValidationError 带错误码的校验失败，调用方按 Code 分支
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Code, e.Message)
}

// IsInvariant 是否为不可变字段违规
func IsInvariant(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == CodeInvariant
}
