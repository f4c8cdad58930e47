package testutil

import "maps"

// toolinfoFixture 一条完整的 toolinfo 记录
var toolinfoFixture = map[string]any{
	"$schema":   "https://toolhub.wikimedia.org/schema/toolinfo/1.2.1",
	"$language": "en",

	"name":        "toolhub",
	"title":       "Toolhub",
	"subtitle":    "A catalog of tools",
	"description": "Toolhub is a catalog of software tools used in the Wikimedia movement.",
	"url":         "https://toolhub.wikimedia.org/",
	"keywords":    "catalog, tools",
	"author":      "Wikimedia Foundation",
	"repository":  "https://gerrit.wikimedia.org/g/wikimedia/toolhub",
	"license":     "GPL-3.0-or-later",
	"tool_type":   "web app",
	"sponsor":     "Wikimedia Foundation",
	"for_wikis":   "*",

	"technology_used":        []any{"python", "django", "vue"},
	"available_ui_languages": []any{"en", "de"},
	"developer_docs_url":     "https://toolhub.wikimedia.org/static/docs/index.html",

	"user_docs_url": map[string]any{
		"language": "en",
		"url":      "https://meta.wikimedia.org/wiki/Toolhub",
	},
	"feedback_url": []any{
		map[string]any{"language": "en", "url": "https://phabricator.wikimedia.org/tag/toolhub/"},
	},
}

// Toolinfo 返回 toolinfo 测试记录的副本，overrides 中的键覆盖默认值
func Toolinfo(overrides map[string]any) map[string]any {
	record := maps.Clone(toolinfoFixture)
	maps.Copy(record, overrides)
	return record
}
