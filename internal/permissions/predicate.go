// Package permissions 定义对象级权限谓词、按应用/模型配置的权限表，
// 以及面向前端的 CASL 规则导出
package permissions

import (
	"reflect"

	"github.com/ashwinyue/toolhub/internal/model"
)

// CreatorOwned 拥有创建者的对象
type CreatorOwned interface {
	CreatorID() string
}

// UserOwned 归属于某个用户的对象
type UserOwned interface {
	OwnerID() string
}

// Predicate 权限谓词
// obj 为 nil 时回答 "该用户是否可能执行此操作"，否则回答针对具体对象的问题
type Predicate struct {
	name        string
	needsObject bool
	fn          func(user *model.User, obj any) bool
}

// NewPredicate 创建谓词，needsObject 表示结果依赖于具体对象
func NewPredicate(name string, needsObject bool, fn func(user *model.User, obj any) bool) *Predicate {
	return &Predicate{name: name, needsObject: needsObject, fn: fn}
}

// Name 谓词名称
func (p *Predicate) Name() string {
	return p.name
}

// NeedsObject 结果是否依赖对象
func (p *Predicate) NeedsObject() bool {
	return p.needsObject
}

// Test 对用户（nil 表示匿名）和可选对象求值
func (p *Predicate) Test(user *model.User, obj any) bool {
	if isNilObject(obj) {
		obj = nil
	}
	return p.fn(user, obj)
}

// And 逻辑与，短路求值
func (p *Predicate) And(other *Predicate) *Predicate {
	return &Predicate{
		name:        "(" + p.name + " & " + other.name + ")",
		needsObject: p.needsObject || other.needsObject,
		fn: func(user *model.User, obj any) bool {
			return p.fn(user, obj) && other.fn(user, obj)
		},
	}
}

// Or 逻辑或，短路求值
func (p *Predicate) Or(other *Predicate) *Predicate {
	return &Predicate{
		name:        "(" + p.name + " | " + other.name + ")",
		needsObject: p.needsObject || other.needsObject,
		fn: func(user *model.User, obj any) bool {
			return p.fn(user, obj) || other.fn(user, obj)
		},
	}
}

// IsGroupMember 用户属于指定用户组
func IsGroupMember(group string) *Predicate {
	return NewPredicate("is_group_member:"+group, false, func(user *model.User, _ any) bool {
		return user != nil && user.InGroup(group)
	})
}

// ========== 基础谓词 ==========

var (
	AlwaysAllow = NewPredicate("always_allow", false, func(*model.User, any) bool { return true })
	AlwaysDeny  = NewPredicate("always_deny", false, func(*model.User, any) bool { return false })

	IsAuthenticated = NewPredicate("is_authenticated", false, func(user *model.User, _ any) bool {
		return user != nil && user.ID != ""
	})

	// IsObjCreator 用户是对象的创建者
	IsObjCreator = NewPredicate("is_obj_creator", true, func(user *model.User, obj any) bool {
		if obj == nil {
			return true
		}
		owned, ok := obj.(CreatorOwned)
		if !ok || user == nil {
			return false
		}
		return owned.CreatorID() != "" && owned.CreatorID() == user.ID
	})

	// IsObjUser 用户是对象的所属用户
	IsObjUser = NewPredicate("is_obj_user", true, func(user *model.User, obj any) bool {
		if obj == nil {
			return true
		}
		owned, ok := obj.(UserOwned)
		if !ok || user == nil {
			return false
		}
		return owned.OwnerID() != "" && owned.OwnerID() == user.ID
	})

	// IsSelf 对象就是用户本身
	IsSelf = NewPredicate("is_self", true, func(user *model.User, obj any) bool {
		if obj == nil {
			return true
		}
		other, ok := obj.(*model.User)
		if !ok || user == nil {
			return false
		}
		return other.ID == user.ID
	})
)

// ========== 用户组谓词 ==========

var (
	IsAdministrator = IsGroupMember(model.GroupAdministrators)
	IsBureaucrat    = IsGroupMember(model.GroupBureaucrats)
	IsOversighter   = IsGroupMember(model.GroupOversighters)
	IsPatroller     = IsGroupMember(model.GroupPatrollers)
	IsAdminOrCrat   = IsBureaucrat.Or(IsAdministrator)
)

// ========== 组合谓词 ==========

var (
	IsObjCreatorOrAdmin = IsAuthenticated.And(IsObjCreator.Or(IsAdministrator))
	IsObjUserOrAdmin    = IsAuthenticated.And(IsObjUser.Or(IsAdministrator))
	IsSelfOrAdmin       = IsAuthenticated.And(IsSelf.Or(IsAdministrator))
)

func isNilObject(obj any) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
