package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/toolhub/internal/model"
)

func TestPermName(t *testing.T) {
	assert.Equal(t, "toolinfo.change_tool", PermName(AppToolinfo, ActionChange, ModelTool))
	assert.Equal(t, "user.view_toolhubuser", PermName(AppUser, ActionView, ModelUser))
}

func TestRuleSetAddPerm(t *testing.T) {
	rs := NewRuleSet()

	require.NoError(t, rs.AddPerm("toolinfo", AlwaysAllow))
	assert.Error(t, rs.AddPerm("toolinfo", AlwaysDeny))
	assert.True(t, rs.HasPerm("toolinfo", nil, nil))

	assert.False(t, rs.HasPerm("missing.rule", newUser("a"), nil))
}

func TestRegisterModelPermissions(t *testing.T) {
	rs := NewRuleSet()
	RegisterModelPermissions(rs, DefaultTable)

	for _, app := range DefaultTable {
		for _, m := range app.Models {
			for _, action := range Actions {
				assert.True(t, rs.PermExists(PermName(app.App, action, m.Model)))
			}
		}

		p, ok := rs.Predicate(app.App)
		require.True(t, ok, app.App)
		assert.Same(t, IsAuthenticated, p)
	}

	t.Run("unlisted actions deny", func(t *testing.T) {
		p, ok := rs.Predicate("crawler.add_run")
		require.True(t, ok)
		assert.Same(t, AlwaysDeny, p)
		assert.False(t, rs.HasPerm("crawler.add_run", newUser("admin", model.GroupAdministrators), nil))
	})

	t.Run("configured predicate", func(t *testing.T) {
		p, ok := rs.Predicate("toolinfo.change_tool")
		require.True(t, ok)
		assert.Same(t, IsObjCreatorOrAdmin, p)
	})
}

func TestRegisterModelPermissionsKeepsAppRule(t *testing.T) {
	rs := NewRuleSet()
	require.NoError(t, rs.AddPerm(AppToolinfo, AlwaysDeny))

	RegisterModelPermissions(rs, DefaultTable)

	p, _ := rs.Predicate(AppToolinfo)
	assert.Same(t, AlwaysDeny, p)
}

func TestRegisterModelPermissionsOverwrites(t *testing.T) {
	rs := NewRuleSet()
	RegisterModelPermissions(rs, DefaultTable)
	before := rs.Names()

	rs.SetPerm("toolinfo.add_tool", AlwaysDeny)
	RegisterModelPermissions(rs, DefaultTable)

	p, _ := rs.Predicate("toolinfo.add_tool")
	assert.Same(t, IsAuthenticated, p)
	assert.Equal(t, before, rs.Names())
}

func TestAuthorizerCan(t *testing.T) {
	authz := NewDefault()
	alice := newUser("alice")
	tool := &model.Tool{ID: "t1", CreatedByID: "alice", Origin: model.OriginAPI}

	assert.True(t, authz.Can(alice, AppToolinfo, ModelTool, ActionAdd, nil))
	assert.True(t, authz.Can(alice, AppToolinfo, ModelTool, ActionChange, tool))
	assert.False(t, authz.Can(newUser("bob"), AppToolinfo, ModelTool, ActionChange, tool))
	assert.True(t, authz.Can(nil, AppToolinfo, ModelTool, ActionView, tool))
	assert.False(t, authz.Can(nil, AppToolinfo, ModelTool, ActionAdd, nil))
	assert.False(t, authz.Can(alice, AppUser, ModelUser, ActionAdd, nil))
	assert.True(t, authz.HasPerm(alice, "user.change_toolhubuser", alice))
}
