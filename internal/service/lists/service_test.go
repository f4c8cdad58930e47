package lists

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/logging"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service/toolinfo"
	"github.com/ashwinyue/toolhub/internal/testutil"
)

type fixture struct {
	svc   *Service
	repo  *repository.Repositories
	owner *model.User
	other *model.User
	admin *model.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewRepositories(db)

	f := &fixture{
		svc:   NewService(repo, permissions.NewDefault(), logging.Discard()),
		repo:  repo,
		owner: testutil.CreateUser(t, db, "owner"),
		other: testutil.CreateUser(t, db, "other"),
		admin: testutil.CreateUser(t, db, "admin", model.GroupAdministrators),
	}

	tools := toolinfo.NewService(repo, nil, nil, logging.Discard())
	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, _, _, err := tools.FromToolInfo(ctx, testutil.Toolinfo(map[string]any{"name": name}), f.owner, model.OriginCrawler)
		require.NoError(t, err)
	}
	return f
}

func TestCreateAndGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	list, err := f.svc.Create(ctx, &CreateRequest{
		Title:     "My tools",
		Published: true,
		Tools:     []string{"beta", "alpha", "alpha"},
	}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, list.ToolNames())
	assert.Equal(t, f.owner.ID, list.CreatedByID)

	got, err := f.svc.Get(ctx, list.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "My tools", got.Title)

	versions, _, err := f.repo.Version.ListForObject(ctx, model.ContentTypeToolList, list.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestCreateUnknownTool(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), &CreateRequest{Title: "x", Tools: []string{"alpha", "nope"}}, f.owner)
	assert.ErrorIs(t, err, ErrUnknownTools)
	assert.Contains(t, err.Error(), "nope")
}

func TestCreateRequiresUser(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), &CreateRequest{Title: "x"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUnpublishedVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, &CreateRequest{Title: "Draft"}, f.owner)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, &CreateRequest{Title: "Public", Published: true}, f.other)
	require.NoError(t, err)

	tests := []struct {
		name    string
		viewer  *model.User
		canGet  bool
		visible int64
	}{
		{"anonymous", nil, false, 1},
		{"other user", f.other, false, 1},
		{"owner", f.owner, true, 2},
		{"admin", f.admin, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Get(ctx, draft.ID, tt.viewer)
			if tt.canGet {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotFound)
			}

			_, total, err := f.svc.List(ctx, tt.viewer, "", 0, 20)
			require.NoError(t, err)
			assert.Equal(t, tt.visible, total)
		})
	}
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	list, err := f.svc.Create(ctx, &CreateRequest{Title: "Mine", Tools: []string{"alpha"}}, f.owner)
	require.NoError(t, err)

	title := "Renamed"
	_, err = f.svc.Update(ctx, list, &UpdateRequest{Title: &title}, f.other)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.Update(ctx, list, &UpdateRequest{Title: &title}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, []string{"alpha"}, updated.ToolNames())

	updated, err = f.svc.Update(ctx, updated, &UpdateRequest{Tools: []string{"gamma", "beta"}}, f.admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma"}, updated.ToolNames())
	assert.Equal(t, f.admin.ID, updated.ModifiedByID)

	updated, err = f.svc.Update(ctx, updated, &UpdateRequest{Tools: []string{}}, f.owner)
	require.NoError(t, err)
	assert.Empty(t, updated.ToolNames())

	versions, _, err := f.repo.Version.ListForObject(ctx, model.ContentTypeToolList, list.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, versions, 4)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	list, err := f.svc.Create(ctx, &CreateRequest{Title: "Mine", Published: true}, f.owner)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, list, f.other), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, list, f.owner))

	_, err = f.svc.Get(ctx, list.ID, f.owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavorites(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	favs, err := f.svc.Favorites(ctx, f.owner)
	require.NoError(t, err)
	assert.True(t, favs.Favorites)
	assert.Empty(t, favs.Tools)

	again, err := f.svc.Favorites(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, favs.ID, again.ID)

	favs, err = f.svc.AddFavorite(ctx, f.owner, "beta")
	require.NoError(t, err)
	favs, err = f.svc.AddFavorite(ctx, f.owner, "beta")
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, favs.ToolNames())

	_, err = f.svc.AddFavorite(ctx, f.owner, "missing")
	assert.ErrorIs(t, err, ErrUnknownTools)

	favs, err = f.svc.RemoveFavorite(ctx, f.owner, "beta")
	require.NoError(t, err)
	assert.Empty(t, favs.ToolNames())

	assert.ErrorIs(t, f.svc.Delete(ctx, favs, f.owner), ErrFavorites)

	published := true
	_, err = f.svc.Update(ctx, favs, &UpdateRequest{Published: &published}, f.owner)
	assert.ErrorIs(t, err, ErrFavorites)

	_, total, err := f.svc.List(ctx, f.owner, "", 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestOneFavoritesListPerUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	favs, err := f.svc.Favorites(ctx, f.owner)
	require.NoError(t, err)

	newList := func(favorites bool) *model.ToolList {
		return &model.ToolList{
			ID:           uuid.New().String(),
			Title:        FavoritesTitle,
			Favorites:    favorites,
			CreatedByID:  f.owner.ID,
			ModifiedByID: f.owner.ID,
		}
	}
	err = f.repo.ToolList.Create(ctx, newList(true))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// 普通列表不受限制
	require.NoError(t, f.repo.ToolList.Create(ctx, newList(false)))
	require.NoError(t, f.repo.ToolList.Create(ctx, newList(false)))

	again, err := f.svc.Favorites(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, favs.ID, again.ID)

	others, err := f.svc.Favorites(ctx, f.other)
	require.NoError(t, err)
	assert.NotEqual(t, favs.ID, others.ID)
}
