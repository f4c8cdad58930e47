package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/toolhub/internal/logging"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/testutil"
)

type recordingInvalidator struct {
	users []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID string) error {
	r.users = append(r.users, userID)
	return nil
}

type fixture struct {
	svc   *Service
	inv   *recordingInvalidator
	user  *model.User
	other *model.User
	admin *model.User
	crat  *model.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	inv := &recordingInvalidator{}
	return &fixture{
		svc:   NewService(repository.NewRepositories(db), permissions.NewDefault(), inv, logging.Discard()),
		inv:   inv,
		user:  testutil.CreateUser(t, db, "user"),
		other: testutil.CreateUser(t, db, "other"),
		admin: testutil.CreateUser(t, db, "admin", model.GroupAdministrators),
		crat:  testutil.CreateUser(t, db, "crat", model.GroupBureaucrats),
	}
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func TestUpdateSelf(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	updated, err := f.svc.Update(ctx, f.user, &ChangeRequest{Email: strPtr("new@example.org")}, f.user)
	require.NoError(t, err)
	assert.Equal(t, "new@example.org", updated.Email)
	assert.Empty(t, f.inv.users)

	_, err = f.svc.Update(ctx, f.other, &ChangeRequest{Email: strPtr("x@example.org")}, f.user)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Update(ctx, f.user, &ChangeRequest{IsActive: boolPtr(false)}, f.user)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Update(ctx, f.user, &ChangeRequest{}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminChangesGroups(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	updated, err := f.svc.Update(ctx, f.user, &ChangeRequest{
		Groups: []string{model.GroupPatrollers, model.GroupOversighters},
	}, f.admin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{model.GroupPatrollers, model.GroupOversighters}, updated.GroupNames())
	assert.Equal(t, []string{f.user.ID}, f.inv.users)

	updated, err = f.svc.Update(ctx, updated, &ChangeRequest{Groups: []string{}}, f.admin)
	require.NoError(t, err)
	assert.Empty(t, updated.GroupNames())

	_, err = f.svc.Update(ctx, updated, &ChangeRequest{Groups: []string{"Wizards"}}, f.admin)
	assert.ErrorIs(t, err, ErrUnknownGroups)
}

func TestDeleteUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, f.user), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.other, f.admin))

	_, err := f.svc.Get(ctx, f.other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroups(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateGroup(ctx, &GroupRequest{Name: "Reviewers"}, f.crat)
	assert.ErrorIs(t, err, ErrForbidden)

	group, err := f.svc.CreateGroup(ctx, &GroupRequest{Name: "Reviewers"}, f.admin)
	require.NoError(t, err)

	require.NoError(t, f.svc.AddMember(ctx, group, f.user.ID, f.crat))
	members, err := f.svc.Members(ctx, group)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, f.user.ID, members[0].ID)
	assert.Equal(t, []string{f.user.ID}, f.inv.users)

	assert.ErrorIs(t, f.svc.AddMember(ctx, group, f.other.ID, f.user), ErrForbidden)
	assert.ErrorIs(t, f.svc.AddMember(ctx, group, "missing", f.admin), ErrNotFound)

	renamed, err := f.svc.RenameGroup(ctx, group, &GroupRequest{Name: "Editors"}, f.crat)
	require.NoError(t, err)
	assert.Equal(t, "Editors", renamed.Name)

	require.NoError(t, f.svc.RemoveMember(ctx, group, f.user.ID, f.admin))
	members, err = f.svc.Members(ctx, group)
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, f.svc.DeleteGroup(ctx, group, f.crat))
	_, err = f.svc.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuiltinGroupsAreProtected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	groups, err := f.svc.ListGroups(ctx)
	require.NoError(t, err)

	var admins *model.Group
	for _, g := range groups {
		if g.Name == model.GroupAdministrators {
			admins = g
		}
	}
	require.NotNil(t, admins)

	assert.ErrorIs(t, f.svc.DeleteGroup(ctx, admins, f.admin), ErrBuiltinGroup)
	_, err = f.svc.RenameGroup(ctx, admins, &GroupRequest{Name: "Root"}, f.admin)
	assert.ErrorIs(t, err, ErrBuiltinGroup)
}

func TestBuiltinMembershipRequiresAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	groups, err := f.svc.ListGroups(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, groups)

	for _, g := range groups {
		assert.ErrorIs(t, f.svc.AddMember(ctx, g, f.crat.ID, f.crat), ErrForbidden, g.Name)
		assert.ErrorIs(t, f.svc.AddMember(ctx, g, f.user.ID, f.crat), ErrForbidden, g.Name)
		assert.ErrorIs(t, f.svc.RemoveMember(ctx, g, f.crat.ID, f.crat), ErrForbidden, g.Name)
	}
	assert.Empty(t, f.inv.users)

	crat, err := f.svc.Get(ctx, f.crat.ID)
	require.NoError(t, err)
	assert.False(t, crat.InGroup(model.GroupAdministrators))

	for _, g := range groups {
		if g.Name == model.GroupPatrollers {
			require.NoError(t, f.svc.AddMember(ctx, g, f.user.ID, f.admin))
		}
	}
	assert.Equal(t, []string{f.user.ID}, f.inv.users)
}
