package toolinfo

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const legacyToolforgePrefix = "toolforge."

var (
	slugStripRe = regexp.MustCompile(`[^\w\s-]`)
	slugDashRe  = regexp.MustCompile(`[-\s]+`)
)

// NameToSlug 把 toolinfo 名称转换为工具的唯一标识
// 旧的 "toolforge." 前缀先改写为 "toolforge-"，否则点号会被直接删除
func NameToSlug(name string) string {
	if strings.HasPrefix(name, legacyToolforgePrefix) {
		name = "toolforge-" + strings.TrimPrefix(name, legacyToolforgePrefix)
	}
	return Slugify(name)
}

// Slugify 转为 ASCII 小写，仅保留字母、数字、下划线和连字符，空白与连字符合并为单个连字符
func Slugify(value string) string {
	value = toASCII(value)
	value = slugStripRe.ReplaceAllString(strings.ToLower(value), "")
	value = slugDashRe.ReplaceAllString(value, "-")
	return strings.Trim(value, "-_")
}

// toASCII NFKD 分解后丢弃非 ASCII 字符，"é" 变为 "e"
func toASCII(value string) string {
	decomposed := norm.NFKD.String(value)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
