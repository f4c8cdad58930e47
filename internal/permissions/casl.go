package permissions

import (
	"fmt"

	"github.com/ashwinyue/toolhub/internal/model"
)

// CASLRule 前端使用的声明式权限规则，不含可执行逻辑
type CASLRule struct {
	Subject    string         `json:"subject"`
	Action     Action         `json:"action"`
	Conditions map[string]any `json:"conditions,omitempty"`
	Inverted   bool           `json:"inverted,omitempty"`
}

// relation 依赖用户与对象关系的谓词在 CASL 中的条件字段
type relation struct {
	field       string
	adminBypass bool
}

// relationalPredicates 需要转换为对象条件的谓词
var relationalPredicates = map[*Predicate]relation{
	IsObjCreator:        {field: "created_by.id"},
	IsObjCreatorOrAdmin: {field: "created_by.id", adminBypass: true},
	IsObjUser:           {field: "user.id"},
	IsObjUserOrAdmin:    {field: "user.id", adminBypass: true},
	IsSelf:              {field: "id"},
	IsSelfOrAdmin:       {field: "id", adminBypass: true},
}

// view 不导出：后端不会返回不可见的数据
var caslActions = []Action{ActionAdd, ActionChange, ActionDelete}

// IsRelational 谓词是否会被导出为对象条件
func IsRelational(p *Predicate) bool {
	_, ok := relationalPredicates[p]
	return ok
}

// CASLForUser 生成用户（nil 表示匿名）可执行的 CASL 规则列表
// 被拒绝的规则不会出现在结果中
func (a *Authorizer) CASLForUser(user *model.User) []CASLRule {
	admin := IsAdministrator.Test(user, nil)

	rules := make([]CASLRule, 0)
	for _, app := range a.table {
		for _, m := range app.Models {
			for _, action := range caslActions {
				rule := makeRule(user, admin, m.Predicate(action), app.App, m.Model, action)
				if rule.Inverted {
					continue
				}
				rules = append(rules, rule)
			}
		}
	}
	return rules
}

func makeRule(user *model.User, admin bool, predicate *Predicate, app, modelName string, action Action) CASLRule {
	rule := CASLRule{
		Subject: fmt.Sprintf("%s/%s", app, modelName),
		Action:  action,
	}

	if rel, ok := relationalPredicates[predicate]; ok {
		switch {
		case !IsAuthenticated.Test(user, nil):
			rule.Inverted = true
		case rel.adminBypass && admin:
			// 管理员无需条件
		default:
			rule.Conditions = map[string]any{rel.field: user.ID}
		}
	} else if !predicate.Test(user, nil) {
		rule.Inverted = true
	}

	if app == AppToolinfo && modelName == ModelTool && (action == ActionChange || action == ActionDelete) {
		// 只有通过 API 管理的记录可以通过 API 编辑
		if rule.Conditions == nil {
			rule.Conditions = map[string]any{}
		}
		rule.Conditions["origin"] = model.OriginAPI
	}

	return rule
}
