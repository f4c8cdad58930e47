package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/toolhub/internal/logging"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service/toolinfo"
	"github.com/ashwinyue/toolhub/internal/testutil"
)

type memoryEngine struct {
	docs      map[string]*model.Tool
	order     []string
	searchErr error
}

func newMemoryEngine() *memoryEngine {
	return &memoryEngine{docs: map[string]*model.Tool{}}
}

func (m *memoryEngine) Put(_ context.Context, tool *model.Tool) error {
	if _, ok := m.docs[tool.ID]; !ok {
		m.order = append(m.order, tool.ID)
	}
	m.docs[tool.ID] = tool
	return nil
}

func (m *memoryEngine) Remove(_ context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

func (m *memoryEngine) Search(_ context.Context, _ string, _, _ int) (*Hits, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	hits := &Hits{}
	for i := len(m.order) - 1; i >= 0; i-- {
		hits.IDs = append(hits.IDs, m.order[i])
	}
	hits.Total = int64(len(hits.IDs))
	return hits, nil
}

func seed(t *testing.T, indexer toolinfo.Indexer) *repository.Repositories {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := repository.NewRepositories(db)
	user := testutil.CreateUser(t, db, "crawler")

	tools := toolinfo.NewService(repo, indexer, nil, logging.Discard())
	records := []map[string]any{
		{"name": "wiki-edit", "title": "Wiki editor", "description": "Edit pages"},
		{"name": "maps", "title": "Maps", "description": "Wiki maps viewer"},
		{"name": "stats", "title": "Statistics", "description": "Numbers"},
	}
	for _, r := range records {
		_, _, _, err := tools.FromToolInfo(context.Background(), testutil.Toolinfo(r), user, model.OriginCrawler)
		require.NoError(t, err)
	}
	return repo
}

func TestDatabaseSearch(t *testing.T) {
	svc := NewService(nil, nil, logging.Discard())
	svc.repo = seed(t, svc)

	result, err := svc.Search(context.Background(), "  WIKI ", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, BackendDatabase, result.Backend)
	assert.Equal(t, int64(2), result.Total)
	require.Len(t, result.Tools, 2)
	assert.Equal(t, "maps", result.Tools[0].Name)
	assert.Equal(t, "wiki-edit", result.Tools[1].Name)
}

func TestIndexSearchKeepsRanking(t *testing.T) {
	engine := newMemoryEngine()
	svc := NewService(nil, engine, logging.Discard())
	svc.repo = seed(t, svc)
	require.Len(t, engine.docs, 3)

	result, err := svc.Search(context.Background(), "anything", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, BackendElastic, result.Backend)
	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"stats", "maps", "wiki-edit"}, names)
}

func TestIndexSkipsStaleHits(t *testing.T) {
	engine := newMemoryEngine()
	svc := NewService(nil, engine, logging.Discard())
	svc.repo = seed(t, svc)
	engine.order = append(engine.order, "deleted-tool")

	result, err := svc.Search(context.Background(), "", 0, 10)
	require.NoError(t, err)
	assert.Len(t, result.Tools, 3)
}

func TestFallbackWhenIndexFails(t *testing.T) {
	engine := newMemoryEngine()
	svc := NewService(nil, engine, logging.Discard())
	svc.repo = seed(t, svc)
	engine.searchErr = errors.New("connection refused")

	result, err := svc.Search(context.Background(), "maps", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, BackendDatabase, result.Backend)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "maps", result.Tools[0].Name)
}

func TestReindex(t *testing.T) {
	repo := seed(t, nil)
	engine := newMemoryEngine()
	svc := NewService(repo, engine, logging.Discard())

	n, err := svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, engine.docs, 3)

	n, err = NewService(repo, nil, logging.Discard()).Reindex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
