package toolinfo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/toolhub/internal/logging"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/testutil"
)

type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
	err     error
}

func (f *fakeIndexer) IndexTool(_ context.Context, tool *model.Tool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, tool.Name)
	return f.err
}

func (f *fakeIndexer) DeleteTool(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

type fixture struct {
	svc     *Service
	repo    *repository.Repositories
	indexer *fakeIndexer
	user    *model.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := repository.NewRepositories(db)
	indexer := &fakeIndexer{}
	return &fixture{
		svc:     NewService(repo, indexer, nil, logging.Discard()),
		repo:    repo,
		indexer: indexer,
		user:    testutil.CreateUser(t, db, "Demo Unicorn"),
	}
}

func TestFromToolInfo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := testutil.Toolinfo(nil)

	tool, created, updated, err := f.svc.FromToolInfo(ctx, record, f.user, model.OriginCrawler)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, updated)

	assert.Equal(t, "toolhub", tool.Name)
	assert.Equal(t, f.user.ID, tool.CreatedByID)
	assert.Equal(t, f.user.ID, tool.ModifiedByID)
	assert.Equal(t, record["$schema"], tool.Schema)
	assert.Equal(t, record["$language"], tool.Language)
	assert.Equal(t, model.OriginCrawler, tool.Origin)
	assert.Equal(t, []string{"toolhub"}, f.indexer.indexed)

	stored, err := f.repo.Tool.GetByName(ctx, "toolhub")
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog", "tools"}, []string(stored.Keywords))
	assert.Equal(t, []model.URLMultilingual{
		{Language: "en", URL: "https://toolhub.wikimedia.org/static/docs/index.html"},
	}, []model.URLMultilingual(stored.DeveloperDocsURL))
	require.NotNil(t, stored.CreatedBy)
	assert.Equal(t, "Demo Unicorn", stored.CreatedBy.Username)
}

func TestFromToolInfoIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, created, _, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, model.OriginCrawler)
	require.NoError(t, err)
	require.True(t, created)

	second, created, updated, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, model.OriginCrawler)
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, updated)
	assert.Equal(t, first.ID, second.ID)

	versions, total, err := f.repo.Version.ListForObject(ctx, model.ContentTypeTool, first.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
	assert.Equal(t, int64(1), total)
	assert.Len(t, f.indexer.indexed, 1)
}

func TestFromToolInfoUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, _, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, model.OriginCrawler)
	require.NoError(t, err)

	editor := testutil.CreateUser(t, f.repo.DB, "editor")
	tool, created, updated, err := f.svc.FromToolInfo(ctx,
		testutil.Toolinfo(map[string]any{"title": "Toolhub 2"}), editor, model.OriginCrawler)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, updated)
	assert.Equal(t, "Toolhub 2", tool.Title)
	assert.Equal(t, f.user.ID, tool.CreatedByID)
	assert.Equal(t, editor.ID, tool.ModifiedByID)

	versions, _, err := f.repo.Version.ListForObject(ctx, model.ContentTypeTool, tool.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestLegacyToolforgeNameFix(t *testing.T) {
	f := setup(t)

	tool, created, updated, err := f.svc.FromToolInfo(context.Background(),
		testutil.Toolinfo(map[string]any{"name": "toolforge.some-tool"}), f.user, model.OriginCrawler)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, updated)
	assert.Equal(t, "toolforge-some-tool", tool.Name)
}

func TestKeywordsConverge(t *testing.T) {
	for _, keywords := range []any{"a, b", []any{"a", "b"}} {
		f := setup(t)
		ctx := context.Background()

		_, created, _, err := f.svc.FromToolInfo(ctx,
			testutil.Toolinfo(map[string]any{"keywords": keywords}), f.user, model.OriginCrawler)
		require.NoError(t, err)
		assert.True(t, created)

		stored, err := f.repo.Tool.GetByName(ctx, "toolhub")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, []string(stored.Keywords))
	}
}

func TestKeywordsFormatChangeIsNoop(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, _, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(map[string]any{"keywords": "a, b"}), f.user, model.OriginCrawler)
	require.NoError(t, err)

	_, created, updated, err := f.svc.FromToolInfo(ctx,
		testutil.Toolinfo(map[string]any{"keywords": []any{"a", "b"}}), f.user, model.OriginCrawler)
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, updated)
}

func TestFromToolInfoOriginChange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	original, _, _, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, model.OriginCrawler)
	require.NoError(t, err)

	_, _, _, err = f.svc.FromToolInfo(ctx,
		testutil.Toolinfo(map[string]any{"title": "Changed"}), f.user, model.OriginAPI)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, CodeInvariant, ve.Code)
	assert.True(t, IsInvariant(err))

	stored, err := f.repo.Tool.GetByName(ctx, "toolhub")
	require.NoError(t, err)
	assert.Equal(t, model.OriginCrawler, stored.Origin)
	assert.Equal(t, original.Title, stored.Title)

	versions, _, err := f.repo.Version.ListForObject(ctx, model.ContentTypeTool, stored.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestFromToolInfoRejectsInvalid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, _, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(map[string]any{"keywords": 7}), f.user, model.OriginCrawler)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, CodeSchema, ve.Code)

	_, _, _, err = f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, "manual")
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, CodeInvalid, ve.Code)

	_, _, _, err = f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), nil, model.OriginAPI)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "user", ve.Field)

	_, _, _, err = f.svc.FromToolInfo(ctx, testutil.Toolinfo(map[string]any{"name": "!!!"}), f.user, model.OriginAPI)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
}

func TestCreateAndUpdateViaAPI(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tool, err := f.svc.Create(ctx, testutil.Toolinfo(map[string]any{"name": "api-tool"}), f.user)
	require.NoError(t, err)
	assert.Equal(t, model.OriginAPI, tool.Origin)

	_, err = f.svc.Create(ctx, testutil.Toolinfo(map[string]any{"name": "API Tool"}), f.user)
	assert.ErrorIs(t, err, ErrToolExists)

	updated, changed, err := f.svc.Update(ctx, tool,
		testutil.Toolinfo(map[string]any{"name": "renamed", "title": "API tool"}), f.user)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "api-tool", updated.Name)
	assert.Equal(t, "API tool", updated.Title)
}

func TestUpdateRejectsCrawlerTool(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tool, _, _, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, model.OriginCrawler)
	require.NoError(t, err)

	_, _, err = f.svc.Update(ctx, tool, testutil.Toolinfo(map[string]any{"title": "x"}), f.user)
	assert.True(t, IsInvariant(err))
}

func TestDeleteRejectsCrawlerTool(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tool, _, _, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, model.OriginCrawler)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, tool, f.user)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeInvariant, ve.Code)
	assert.Equal(t, "origin", ve.Field)
	assert.Empty(t, f.indexer.deleted)

	_, err = f.svc.Get(ctx, "toolhub")
	assert.NoError(t, err)
}

func TestDeleteAndRestore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tool, err := f.svc.Create(ctx, testutil.Toolinfo(nil), f.user)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, tool, f.user))
	assert.Equal(t, []string{tool.ID}, f.indexer.deleted)

	_, err = f.svc.Get(ctx, "toolhub")
	assert.ErrorIs(t, err, ErrNotFound)

	other := testutil.CreateUser(t, f.repo.DB, "other")
	restored, err := f.svc.Create(ctx, testutil.Toolinfo(nil), other)
	require.NoError(t, err)
	assert.Equal(t, tool.ID, restored.ID)
	assert.Equal(t, other.ID, restored.CreatedByID)

	got, err := f.svc.Get(ctx, "toolhub")
	require.NoError(t, err)
	assert.Equal(t, tool.ID, got.ID)
	assert.Equal(t, other.ID, got.CreatedByID)

	_, err = f.svc.Create(ctx, testutil.Toolinfo(nil), other)
	assert.ErrorIs(t, err, ErrToolExists)
}

func TestRestoreKeepsUpsertFlags(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tool, err := f.svc.Create(ctx, testutil.Toolinfo(nil), f.user)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, tool, f.user))

	_, created, updated, err := f.svc.FromToolInfo(ctx, testutil.Toolinfo(nil), f.user, model.OriginAPI)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, updated)
}

func TestIndexerFailureDoesNotFailUpsert(t *testing.T) {
	f := setup(t)
	f.indexer.err = errors.New("es down")

	_, created, _, err := f.svc.FromToolInfo(context.Background(), testutil.Toolinfo(nil), f.user, model.OriginCrawler)
	require.NoError(t, err)
	assert.True(t, created)
}
