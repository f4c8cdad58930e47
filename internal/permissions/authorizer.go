package permissions

import "github.com/ashwinyue/toolhub/internal/model"

// Authorizer 构造后只读的权限配置，通过依赖注入传给服务和处理器
type Authorizer struct {
	table Table
	rules *RuleSet
}

// New 根据权限表构造 Authorizer
func New(table Table) *Authorizer {
	rs := NewRuleSet()
	RegisterModelPermissions(rs, table)
	return &Authorizer{table: table, rules: rs}
}

// NewDefault 使用 DefaultTable 构造 Authorizer
func NewDefault() *Authorizer {
	return New(DefaultTable)
}

// Table 权限表
func (a *Authorizer) Table() Table {
	return a.table
}

// HasPerm 按规则名检查权限
func (a *Authorizer) HasPerm(user *model.User, perm string, obj any) bool {
	return a.rules.HasPerm(perm, user, obj)
}

// Can 按应用/模型/操作检查权限
func (a *Authorizer) Can(user *model.User, app, modelName string, action Action, obj any) bool {
	return a.rules.HasPerm(PermName(app, action, modelName), user, obj)
}

// RuleNames 已注册的规则名
func (a *Authorizer) RuleNames() []string {
	return a.rules.Names()
}
