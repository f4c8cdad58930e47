package model

import (
	"time"

	"gorm.io/gorm"
)

// ToolList 工具列表 (lists/toollist)，列表内工具无顺序
type ToolList struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Title       string `gorm:"size:255;not null;index" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:2047" json:"icon,omitempty"`
	Favorites   bool   `gorm:"index;default:false" json:"favorites"`
	Published   bool   `gorm:"index;default:false" json:"published"`
	Tools       []Tool `gorm:"many2many:tool_list_items;" json:"tools"`

	CreatedByID  string `gorm:"size:36;index" json:"-"`
	CreatedBy    *User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	ModifiedByID string `gorm:"size:36" json:"-"`
	ModifiedBy   *User  `gorm:"foreignKey:ModifiedByID" json:"modified_by,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_date"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"modified_date"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (ToolList) TableName() string {
	return "tool_lists"
}

// CreatorID 创建者 ID
func (l *ToolList) CreatorID() string {
	return l.CreatedByID
}

// ToolNames 列表中的工具名
func (l *ToolList) ToolNames() []string {
	names := make([]string, 0, len(l.Tools))
	for _, t := range l.Tools {
		names = append(names, t.Name)
	}
	return names
}
