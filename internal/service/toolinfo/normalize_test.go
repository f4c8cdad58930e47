package toolinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashwinyue/toolhub/internal/model"
)

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"comma string", "a, b", []string{"a", "b"}},
		{"array", []any{"a", "b"}, []string{"a", "b"}},
		{"empty parts dropped", "a,, b ,", []string{"a", "b"}},
		{"missing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := Normalize(map[string]any{"name": "x", "keywords": tt.in})
			assert.Equal(t, tt.want, []string(tool.Keywords))
		})
	}
}

func TestNormalizeScalarToList(t *testing.T) {
	tool := Normalize(map[string]any{
		"name":                   "x",
		"sponsor":                "WMF",
		"technology_used":        []any{"go", "vue"},
		"for_wikis":              "*",
		"available_ui_languages": "en",
	})

	assert.Equal(t, []string{"WMF"}, []string(tool.Sponsor))
	assert.Equal(t, []string{"go", "vue"}, []string(tool.TechnologyUsed))
	assert.Equal(t, []string{"*"}, []string(tool.ForWikis))
	assert.Equal(t, []string{"en"}, []string(tool.AvailableUILanguages))
}

func TestNormalizeURLMultilingual(t *testing.T) {
	tool := Normalize(map[string]any{
		"name":               "x",
		"developer_docs_url": "https://example.org/docs",
		"user_docs_url":      map[string]any{"language": "de", "url": "https://example.org/de"},
		"feedback_url": []any{
			"https://example.org/feedback",
			map[string]any{"url": "https://example.org/fr", "language": "fr"},
			map[string]any{"language": "es"},
		},
	})

	assert.Equal(t, []model.URLMultilingual{{Language: "en", URL: "https://example.org/docs"}}, []model.URLMultilingual(tool.DeveloperDocsURL))
	assert.Equal(t, []model.URLMultilingual{{Language: "de", URL: "https://example.org/de"}}, []model.URLMultilingual(tool.UserDocsURL))
	assert.Equal(t, []model.URLMultilingual{
		{Language: "en", URL: "https://example.org/feedback"},
		{Language: "fr", URL: "https://example.org/fr"},
	}, []model.URLMultilingual(tool.FeedbackURL))
	assert.Nil(t, tool.PrivacyPolicyURL)
}

func TestNormalizeMetadata(t *testing.T) {
	tool := Normalize(map[string]any{
		"name":       "toolforge.demo",
		"$schema":    "https://toolhub.wikimedia.org/schema/toolinfo/1.2.1",
		"$language":  "fr",
		"author":     []any{map[string]any{"name": "Ada"}, "Grace"},
		"deprecated": true,
	})

	assert.Equal(t, "toolforge-demo", tool.Name)
	assert.Equal(t, "https://toolhub.wikimedia.org/schema/toolinfo/1.2.1", tool.Schema)
	assert.Equal(t, "fr", tool.Language)
	assert.Equal(t, "Ada, Grace", tool.Author)
	assert.True(t, tool.Deprecated)
}

func TestSameContentTreatsNilAsEmpty(t *testing.T) {
	a := &model.Tool{Name: "x"}
	b := &model.Tool{Name: "x", Keywords: []string{}}
	assert.True(t, sameContent(a, b))

	b.Keywords = []string{"k"}
	assert.False(t, sameContent(a, b))
}

func TestApplyContentKeepsIdentity(t *testing.T) {
	dst := &model.Tool{ID: "id-1", Origin: model.OriginCrawler, CreatedByID: "u1", Title: "old"}
	src := &model.Tool{ID: "other", Origin: model.OriginAPI, CreatedByID: "u2", Title: "new"}

	applyContent(dst, src)

	assert.Equal(t, "id-1", dst.ID)
	assert.Equal(t, model.OriginCrawler, dst.Origin)
	assert.Equal(t, "u1", dst.CreatedByID)
	assert.Equal(t, "new", dst.Title)
}
