package toolinfo

import (
	"reflect"
	"strings"

	"gorm.io/datatypes"

	"github.com/ashwinyue/toolhub/internal/model"
)

// 记录中可以是单个值或数组、存储为数组的字段
var listFields = []string{
	"keywords",
	"sponsor",
	"technology_used",
	"for_wikis",
	"available_ui_languages",
}

// 可以是 URL 字符串、{language,url} 对象或它们的数组的字段
var urlMultilingualFields = []string{
	"developer_docs_url",
	"user_docs_url",
	"feedback_url",
	"privacy_policy_url",
	"url_alternates",
}

// defaultURLLanguage 裸 URL 字符串的语言
const defaultURLLanguage = "en"

// Normalize 把 toolinfo 记录转换为未保存的 Tool，名称已转为 slug
func Normalize(record map[string]any) *model.Tool {
	tool := &model.Tool{
		Name:        NameToSlug(stringValue(record["name"])),
		Title:       stringValue(record["title"]),
		Subtitle:    stringValue(record["subtitle"]),
		Description: stringValue(record["description"]),
		URL:         stringValue(record["url"]),
		Author:      authorValue(record["author"]),
		Repository:  stringValue(record["repository"]),
		License:     stringValue(record["license"]),
		Icon:        stringValue(record["icon"]),
		ToolType:    stringValue(record["tool_type"]),
		APIURL:      stringValue(record["api_url"]),
		OpenHubID:   stringValue(record["openhub_id"]),
		BotUsername: stringValue(record["bot_username"]),
		ReplacedBy:  stringValue(record["replaced_by"]),

		Deprecated:   boolValue(record["deprecated"]),
		Experimental: boolValue(record["experimental"]),

		Schema:   stringValue(record["$schema"]),
		Language: stringValue(record["$language"]),
	}

	tool.Keywords = keywordsValue(record["keywords"])
	tool.Sponsor = listValue(record["sponsor"])
	tool.TechnologyUsed = listValue(record["technology_used"])
	tool.ForWikis = listValue(record["for_wikis"])
	tool.AvailableUILanguages = listValue(record["available_ui_languages"])

	tool.DeveloperDocsURL = urlMultilingualValue(record["developer_docs_url"])
	tool.UserDocsURL = urlMultilingualValue(record["user_docs_url"])
	tool.FeedbackURL = urlMultilingualValue(record["feedback_url"])
	tool.PrivacyPolicyURL = urlMultilingualValue(record["privacy_policy_url"])
	tool.URLAlternates = urlMultilingualValue(record["url_alternates"])

	return tool
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

// authorValue 作者可以是字符串、{name} 对象或它们的数组
func authorValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		return stringValue(val["name"])
	case []any:
		names := make([]string, 0, len(val))
		for _, item := range val {
			if name := authorValue(item); name != "" {
				names = append(names, name)
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

// keywordsValue 关键词字符串按逗号拆分
func keywordsValue(v any) datatypes.JSONSlice[string] {
	s, ok := v.(string)
	if !ok {
		return listValue(v)
	}
	var out datatypes.JSONSlice[string]
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func listValue(v any) datatypes.JSONSlice[string] {
	switch val := v.(type) {
	case string:
		return datatypes.JSONSlice[string]{val}
	case []string:
		return datatypes.JSONSlice[string](append([]string(nil), val...))
	case []any:
		out := make(datatypes.JSONSlice[string], 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func urlMultilingualValue(v any) datatypes.JSONSlice[model.URLMultilingual] {
	switch val := v.(type) {
	case string, map[string]any:
		if u, ok := urlMultilingualItem(val); ok {
			return datatypes.JSONSlice[model.URLMultilingual]{u}
		}
	case []any:
		out := make(datatypes.JSONSlice[model.URLMultilingual], 0, len(val))
		for _, item := range val {
			if u, ok := urlMultilingualItem(item); ok {
				out = append(out, u)
			}
		}
		return out
	}
	return nil
}

func urlMultilingualItem(v any) (model.URLMultilingual, bool) {
	switch val := v.(type) {
	case string:
		return model.URLMultilingual{Language: defaultURLLanguage, URL: val}, true
	case map[string]any:
		u := model.URLMultilingual{
			Language: stringValue(val["language"]),
			URL:      stringValue(val["url"]),
		}
		if u.Language == "" {
			u.Language = defaultURLLanguage
		}
		return u, u.URL != ""
	}
	return model.URLMultilingual{}, false
}

// content 参与变更检测的字段
type content struct {
	Name, Title, Subtitle, Description, URL, Author string
	Repository, License, Icon, ToolType, APIURL     string
	OpenHubID, BotUsername, ReplacedBy              string
	Deprecated, Experimental                        bool
	Schema, Language                                string

	Keywords, Sponsor, TechnologyUsed, ForWikis, AvailableUILanguages []string

	DeveloperDocsURL, UserDocsURL, FeedbackURL, PrivacyPolicyURL, URLAlternates []model.URLMultilingual
}

func contentOf(t *model.Tool) content {
	return content{
		Name: t.Name, Title: t.Title, Subtitle: t.Subtitle, Description: t.Description,
		URL: t.URL, Author: t.Author, Repository: t.Repository, License: t.License,
		Icon: t.Icon, ToolType: t.ToolType, APIURL: t.APIURL, OpenHubID: t.OpenHubID,
		BotUsername: t.BotUsername, ReplacedBy: t.ReplacedBy,
		Deprecated: t.Deprecated, Experimental: t.Experimental,
		Schema: t.Schema, Language: t.Language,

		Keywords:             nonNil(t.Keywords),
		Sponsor:              nonNil(t.Sponsor),
		TechnologyUsed:       nonNil(t.TechnologyUsed),
		ForWikis:             nonNil(t.ForWikis),
		AvailableUILanguages: nonNil(t.AvailableUILanguages),

		DeveloperDocsURL: nonNil(t.DeveloperDocsURL),
		UserDocsURL:      nonNil(t.UserDocsURL),
		FeedbackURL:      nonNil(t.FeedbackURL),
		PrivacyPolicyURL: nonNil(t.PrivacyPolicyURL),
		URLAlternates:    nonNil(t.URLAlternates),
	}
}

// nonNil nil 与空切片视为相同
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// sameContent 两条记录的内容字段是否一致
func sameContent(a, b *model.Tool) bool {
	return reflect.DeepEqual(contentOf(a), contentOf(b))
}

// applyContent 把 src 的内容字段复制到 dst，不改变 ID、来源和创建信息
func applyContent(dst, src *model.Tool) {
	id, origin := dst.ID, dst.Origin
	createdByID, createdAt := dst.CreatedByID, dst.CreatedAt

	*dst = *src

	dst.ID, dst.Origin = id, origin
	dst.CreatedByID, dst.CreatedAt = createdByID, createdAt
}
