package model

import "time"

// 内置用户组
const (
	GroupAdministrators = "Administrators"
	GroupBureaucrats    = "Bureaucrats"
	GroupOversighters   = "Oversighters"
	GroupPatrollers     = "Patrollers"
)

// DefaultGroups 启动时确保存在的用户组
var DefaultGroups = []string{
	GroupAdministrators,
	GroupBureaucrats,
	GroupOversighters,
	GroupPatrollers,
}

// User 用户 (user/toolhubuser)
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string    `gorm:"index;size:255" json:"-"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	Groups       []Group   `gorm:"many2many:user_groups;" json:"groups,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// InGroup 判断用户是否属于指定用户组
func (u *User) InGroup(name string) bool {
	if u == nil {
		return false
	}
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

// GroupNames 用户所属组名
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

// Group 用户组 (auth/group)
type Group struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:150;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Group) TableName() string {
	return "groups"
}

// AuthToken 认证令牌 (oauth2_provider/accesstoken)
type AuthToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"user_id"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	TokenType string    `gorm:"size:50;not null" json:"token_type"` // access_token, refresh_token
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `gorm:"default:false" json:"is_revoked"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (AuthToken) TableName() string {
	return "auth_tokens"
}

// OwnerID 令牌所属用户
func (t *AuthToken) OwnerID() string {
	return t.UserID
}

// UserInfo 用户信息（不含密码），Email 只返回给本人与管理员
type UserInfo struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	Groups    []string  `json:"groups"`
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserInfo 转换为 UserInfo
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		Groups:    u.GroupNames(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicInfo 公开的用户信息，不含邮箱
func (u *User) PublicInfo() *UserInfo {
	info := u.ToUserInfo()
	info.Email = ""
	return info
}
