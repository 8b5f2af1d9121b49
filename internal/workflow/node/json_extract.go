package node

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSONObject 从模型输出中截取第一个完整的 JSON 对象或数组。
// 模型常在 JSON 前后夹带 markdown 代码块或说明文字。
func ExtractJSONObject(s string) string {
	raw := stripCodeFence(strings.TrimSpace(s))
	if raw == "" {
		return raw
	}
	if gjson.Valid(raw) {
		return raw
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start := -1
	var open, close byte
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start, open, close = objStart, '{', '}'
	case arrStart >= 0:
		start, open, close = arrStart, '[', ']'
	default:
		return raw
	}

	if end := matchingClose(raw, start, open, close); end > start {
		candidate := raw[start : end+1]
		if gjson.Valid(candidate) {
			return candidate
		}
	}

	// 括号不平衡时退回首尾截取，交给调用方的校验判定
	if end := strings.LastIndexByte(raw, close); end > start {
		return raw[start : end+1]
	}
	return raw
}

// stripCodeFence 去掉 ```json ... ``` 包裹
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return s
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// matchingClose 返回与 start 处括号配对的位置，忽略字符串字面量内的括号
func matchingClose(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
