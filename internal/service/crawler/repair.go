package crawler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var errNotToolinfo = errors.New("document is neither a toolinfo object nor an array of objects")

// repairJSON 修复常见的手写 JSON 错误，返回修复后的文本以及是否做过修改
func repairJSON(data []byte) ([]byte, bool, error) {
	if json.Valid(data) {
		return data, false, nil
	}

	s := strings.TrimSpace(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	if json.Valid([]byte(s)) {
		return []byte(s), true, nil
	}

	out, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, false, fmt.Errorf("repair json: %w", err)
	}
	return []byte(out), true, nil
}

// decodeRecords 解析 toolinfo 文档，接受单个对象或对象数组
func decodeRecords(data []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	switch v := doc.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		records := make([]map[string]any, 0, len(v))
		for i, item := range v {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d: %w", i, errNotToolinfo)
			}
			records = append(records, record)
		}
		return records, nil
	default:
		return nil, errNotToolinfo
	}
}
