package permissions

import (
	"fmt"
	"sort"

	"github.com/ashwinyue/toolhub/internal/model"
)

// RuleSet 具名权限规则集合
type RuleSet struct {
	rules map[string]*Predicate
}

// NewRuleSet 创建空规则集
func NewRuleSet() *RuleSet {
	return &RuleSet{rules: make(map[string]*Predicate)}
}

// AddPerm 添加规则，同名规则已存在时返回错误
func (rs *RuleSet) AddPerm(name string, p *Predicate) error {
	if _, ok := rs.rules[name]; ok {
		return fmt.Errorf("permission %q already exists", name)
	}
	rs.rules[name] = p
	return nil
}

// SetPerm 设置规则，覆盖已有同名规则
func (rs *RuleSet) SetPerm(name string, p *Predicate) {
	rs.rules[name] = p
}

// PermExists 规则是否存在
func (rs *RuleSet) PermExists(name string) bool {
	_, ok := rs.rules[name]
	return ok
}

// Predicate 获取规则谓词
func (rs *RuleSet) Predicate(name string) (*Predicate, bool) {
	p, ok := rs.rules[name]
	return p, ok
}

// HasPerm 检查权限，未注册的规则一律拒绝
func (rs *RuleSet) HasPerm(name string, user *model.User, obj any) bool {
	p, ok := rs.rules[name]
	if !ok {
		return false
	}
	return p.Test(user, obj)
}

// Names 已注册规则名（排序后）
func (rs *RuleSet) Names() []string {
	names := make([]string, 0, len(rs.rules))
	for name := range rs.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PermName 规则名，格式为 app.action_model
func PermName(app string, action Action, modelName string) string {
	return fmt.Sprintf("%s.%s_%s", app, action, modelName)
}

// RegisterModelPermissions 将权限表注册到规则集
// 应用级规则仅在不存在时添加；模型规则无条件覆盖，重复注册结果不变
func RegisterModelPermissions(rs *RuleSet, table Table) {
	for _, app := range table {
		if !rs.PermExists(app.App) {
			// 已登录用户可以看到该应用的管理入口
			rs.SetPerm(app.App, IsAuthenticated)
		}
		for _, m := range app.Models {
			for _, action := range Actions {
				rs.SetPerm(PermName(app.App, action, m.Model), m.Predicate(action))
			}
		}
	}
}
