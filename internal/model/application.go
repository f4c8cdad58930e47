package model

import (
	"time"

	"gorm.io/datatypes"
)

// Application OAuth 客户端应用 (oauth2_provider/application)
type Application struct {
	ID               string                      `gorm:"primaryKey;size:36" json:"id"`
	Name             string                      `gorm:"size:255;not null" json:"name"`
	ClientID         string                      `gorm:"size:100;uniqueIndex;not null" json:"client_id"`
	ClientSecretHash string                      `gorm:"size:255;not null" json:"-"`
	RedirectURIs     datatypes.JSONSlice[string] `json:"redirect_uris"`
	UserID           string                      `gorm:"size:36;index;not null" json:"-"`
	User             *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated"`
}

// TableName 指定表名
func (Application) TableName() string {
	return "oauth_applications"
}

// OwnerID 应用所属用户
func (a *Application) OwnerID() string {
	return a.UserID
}
