package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashwinyue/toolhub/internal/model"
)

func newUser(id string, groups ...string) *model.User {
	u := &model.User{ID: id, Username: "user-" + id, IsActive: true}
	for _, g := range groups {
		u.Groups = append(u.Groups, model.Group{ID: "g-" + g, Name: g})
	}
	return u
}

func TestIsObjCreator(t *testing.T) {
	alice := newUser("alice")
	bob := newUser("bob")
	tool := &model.Tool{ID: "t1", CreatedByID: "alice"}

	tests := []struct {
		name string
		user *model.User
		obj  any
		want bool
	}{
		{name: "no object", user: alice, obj: nil, want: true},
		{name: "typed nil object", user: alice, obj: (*model.Tool)(nil), want: true},
		{name: "creator", user: alice, obj: tool, want: true},
		{name: "other user", user: bob, obj: tool, want: false},
		{name: "anonymous", user: nil, obj: tool, want: false},
		{name: "object without creator", user: alice, obj: &model.Group{ID: "g"}, want: false},
		{name: "empty creator", user: &model.User{}, obj: &model.Tool{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsObjCreator.Test(tt.user, tt.obj))
		})
	}
}

func TestIsObjUser(t *testing.T) {
	alice := newUser("alice")
	app := &model.Application{ID: "a1", UserID: "alice"}

	assert.True(t, IsObjUser.Test(alice, nil))
	assert.True(t, IsObjUser.Test(alice, app))
	assert.False(t, IsObjUser.Test(newUser("bob"), app))
	assert.False(t, IsObjUser.Test(alice, &model.Tool{CreatedByID: "alice"}))
}

func TestIsSelf(t *testing.T) {
	alice := newUser("alice")

	assert.True(t, IsSelf.Test(alice, nil))
	assert.True(t, IsSelf.Test(alice, newUser("alice")))
	assert.False(t, IsSelf.Test(alice, newUser("bob")))
	assert.False(t, IsSelf.Test(nil, alice))
	assert.False(t, IsSelf.Test(alice, &model.Tool{ID: "alice"}))
}

func TestGroupPredicates(t *testing.T) {
	admin := newUser("admin", model.GroupAdministrators)
	crat := newUser("crat", model.GroupBureaucrats)
	plain := newUser("plain")

	assert.True(t, IsAdministrator.Test(admin, nil))
	assert.False(t, IsAdministrator.Test(crat, nil))
	assert.False(t, IsAdministrator.Test(nil, nil))

	assert.True(t, IsAdminOrCrat.Test(admin, nil))
	assert.True(t, IsAdminOrCrat.Test(crat, nil))
	assert.False(t, IsAdminOrCrat.Test(plain, nil))

	assert.True(t, IsPatroller.Test(newUser("p", model.GroupPatrollers), nil))
	assert.True(t, IsOversighter.Test(newUser("o", model.GroupOversighters), nil))
}

func TestCompositePredicates(t *testing.T) {
	alice := newUser("alice")
	bob := newUser("bob")
	admin := newUser("admin", model.GroupAdministrators)
	list := &model.ToolList{ID: "l1", CreatedByID: "alice"}

	t.Run("coarse check", func(t *testing.T) {
		assert.True(t, IsObjCreatorOrAdmin.Test(alice, nil))
		assert.False(t, IsObjCreatorOrAdmin.Test(nil, nil))
	})

	t.Run("object check", func(t *testing.T) {
		assert.True(t, IsObjCreatorOrAdmin.Test(alice, list))
		assert.False(t, IsObjCreatorOrAdmin.Test(bob, list))
		assert.True(t, IsObjCreatorOrAdmin.Test(admin, list))
		assert.False(t, IsObjCreatorOrAdmin.Test(nil, list))
	})

	t.Run("self or admin", func(t *testing.T) {
		assert.True(t, IsSelfOrAdmin.Test(alice, alice))
		assert.False(t, IsSelfOrAdmin.Test(bob, alice))
		assert.True(t, IsSelfOrAdmin.Test(admin, alice))
	})

	t.Run("needs object propagates", func(t *testing.T) {
		assert.True(t, IsObjCreatorOrAdmin.NeedsObject())
		assert.True(t, IsObjUserOrAdmin.NeedsObject())
		assert.True(t, IsSelfOrAdmin.NeedsObject())
		assert.False(t, IsAdminOrCrat.NeedsObject())
	})
}

func TestPredicateNames(t *testing.T) {
	assert.Equal(t, "is_obj_creator", IsObjCreator.Name())
	assert.Equal(t,
		"(is_authenticated & (is_obj_creator | is_group_member:Administrators))",
		IsObjCreatorOrAdmin.Name(),
	)
}
