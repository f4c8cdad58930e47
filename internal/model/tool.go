package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 工具记录来源
const (
	OriginCrawler = "crawler"
	OriginAPI     = "api"
)

// URLMultilingual 多语言链接
type URLMultilingual struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// Tool 工具目录记录 (toolinfo/tool)
type Tool struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Subtitle    string `gorm:"size:255" json:"subtitle,omitempty"`
	Description string `gorm:"type:text" json:"description"`
	URL         string `gorm:"size:2047" json:"url"`
	Author      string `gorm:"size:255" json:"author,omitempty"`
	Repository  string `gorm:"size:2047" json:"repository,omitempty"`
	License     string `gorm:"size:255" json:"license,omitempty"`
	Icon        string `gorm:"size:2047" json:"icon,omitempty"`
	ToolType    string `gorm:"size:32" json:"tool_type,omitempty"`
	APIURL      string `gorm:"size:2047" json:"api_url,omitempty"`
	OpenHubID   string `gorm:"size:255" json:"openhub_id,omitempty"`
	BotUsername string `gorm:"size:255" json:"bot_username,omitempty"`
	ReplacedBy  string `gorm:"size:2047" json:"replaced_by,omitempty"`

	Deprecated   bool `gorm:"default:false" json:"deprecated"`
	Experimental bool `gorm:"default:false" json:"experimental"`

	Keywords             datatypes.JSONSlice[string]          `json:"keywords"`
	Sponsor              datatypes.JSONSlice[string]          `json:"sponsor"`
	TechnologyUsed       datatypes.JSONSlice[string]          `json:"technology_used"`
	ForWikis             datatypes.JSONSlice[string]          `json:"for_wikis"`
	AvailableUILanguages datatypes.JSONSlice[string]          `json:"available_ui_languages"`
	DeveloperDocsURL     datatypes.JSONSlice[URLMultilingual] `json:"developer_docs_url"`
	UserDocsURL          datatypes.JSONSlice[URLMultilingual] `json:"user_docs_url"`
	FeedbackURL          datatypes.JSONSlice[URLMultilingual] `json:"feedback_url"`
	PrivacyPolicyURL     datatypes.JSONSlice[URLMultilingual] `json:"privacy_policy_url"`
	URLAlternates        datatypes.JSONSlice[URLMultilingual] `json:"url_alternates"`

	Schema   string `gorm:"column:toolinfo_schema;size:32" json:"$schema,omitempty"`
	Language string `gorm:"column:toolinfo_language;size:16" json:"$language,omitempty"`

	// Origin 创建后不可修改
	Origin string `gorm:"size:32;index;not null;default:crawler" json:"origin"`

	CreatedByID  string `gorm:"size:36;index" json:"-"`
	CreatedBy    *User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	ModifiedByID string `gorm:"size:36" json:"-"`
	ModifiedBy   *User  `gorm:"foreignKey:ModifiedByID" json:"modified_by,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_date"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"modified_date"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Tool) TableName() string {
	return "tools"
}

// CreatorID 创建者 ID
func (t *Tool) CreatorID() string {
	return t.CreatedByID
}
