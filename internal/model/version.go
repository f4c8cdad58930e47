package model

import (
	"time"

	"gorm.io/datatypes"
)

// 版本记录的内容类型
const (
	ContentTypeTool     = "toolinfo/tool"
	ContentTypeToolList = "lists/toollist"
)

// Version 修订快照 (reversion/version)
type Version struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	ContentType string         `gorm:"size:64;not null;index:idx_version_object" json:"content_type"`
	ObjectID    string         `gorm:"size:36;not null;index:idx_version_object" json:"object_id"`
	Serialized  datatypes.JSON `json:"serialized"`
	Comment     string         `gorm:"type:text" json:"comment"`
	UserID      string         `gorm:"size:36;index" json:"-"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`
}

// TableName 指定表名
func (Version) TableName() string {
	return "versions"
}
