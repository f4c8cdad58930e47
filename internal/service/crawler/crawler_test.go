package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/toolhub/internal/config"
	"github.com/ashwinyue/toolhub/internal/logging"
	"github.com/ashwinyue/toolhub/internal/metrics"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service/toolinfo"
	th "github.com/ashwinyue/toolhub/internal/testutil"
)

const site = "https://tools.example.org"

func toolinfoServer(t *testing.T) *httptest.Server {
	t.Helper()

	mustJSON := func(v any) []byte {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return data
	}
	array := []any{
		th.Toolinfo(map[string]any{"name": "array-one"}),
		th.Toolinfo(map[string]any{"name": "array-two"}),
	}
	docs := map[string][]byte{
		"/single.json":  mustJSON(th.Toolinfo(nil)),
		"/array.json":   mustJSON(array),
		"/broken.json":  []byte(`{"name": "broken-tool", "title": "Broken", "description": "Trailing comma", "url": "https://broken.example.org/",}`),
		"/invalid.json": []byte(`{"name": "nope", "title": "No url", "description": "Missing url"}`),
	}

	mux := http.NewServeMux()
	for path, body := range docs {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "toolhub-test", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		})
	}
	mux.HandleFunc("/redirect.json", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/single.json", http.StatusFound)
	})
	mux.HandleFunc("/missing.json", http.NotFound)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

type fixture struct {
	crawler *Crawler
	urls    *Service
	repo    *repository.Repositories
	metrics *metrics.Metrics
	owner   *model.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := th.NewTestDB(t)
	repo := repository.NewRepositories(db)
	m := metrics.New()
	tools := toolinfo.NewService(repo, nil, m, logging.Discard())

	c := New(repo, tools, config.CrawlerConfig{UserAgent: "toolhub-test", Timeout: 5}, m, logging.Discard())
	c.client = th.NewTestClient(toolinfoServer(t))

	return &fixture{
		crawler: c,
		urls:    NewService(repo, permissions.NewDefault()),
		repo:    repo,
		metrics: m,
		owner:   th.CreateUser(t, db, "owner"),
	}
}

func (f *fixture) register(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		_, err := f.urls.AddURL(context.Background(), &URLRequest{URL: site + p}, f.owner)
		require.NoError(t, err)
	}
}

func TestRun(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "/single.json", "/array.json", "/broken.json", "/invalid.json", "/missing.json", "/redirect.json")

	run, err := f.crawler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, run.CrawledURLs)
	assert.Equal(t, 4, run.NewTools)
	assert.Equal(t, 0, run.UpdatedTools)
	assert.Equal(t, 4, run.TotalTools)
	require.NotNil(t, run.EndDate)
	require.Len(t, run.URLs, 6)

	byURL := map[string]model.CrawlerRunURL{}
	for _, ru := range run.URLs {
		require.NotNil(t, ru.URL)
		byURL[ru.URL.URL] = ru
	}

	assert.Equal(t, http.StatusOK, byURL[site+"/single.json"].StatusCode)
	assert.True(t, byURL[site+"/single.json"].SchemaValid)
	assert.Contains(t, byURL[site+"/single.json"].Logs, "Unchanged toolhub")

	assert.True(t, byURL[site+"/redirect.json"].Redirected)
	assert.Contains(t, byURL[site+"/redirect.json"].Logs, "Created toolhub")

	assert.Contains(t, byURL[site+"/broken.json"].Logs, "Repaired malformed JSON")
	assert.True(t, byURL[site+"/broken.json"].SchemaValid)

	assert.False(t, byURL[site+"/invalid.json"].SchemaValid)
	assert.Equal(t, http.StatusNotFound, byURL[site+"/missing.json"].StatusCode)

	tool, err := f.repo.Tool.GetByName(ctx, "array-two")
	require.NoError(t, err)
	assert.Equal(t, model.OriginCrawler, tool.Origin)
	assert.Equal(t, f.owner.ID, tool.CreatedByID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CrawlerRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.CrawlerURLsTotal.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CrawlerURLsTotal.WithLabelValues(resultHTTPError)))
}

func TestRunIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "/single.json", "/array.json")

	first, err := f.crawler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.NewTools)

	second, err := f.crawler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewTools)
	assert.Equal(t, 0, second.UpdatedTools)
	assert.Equal(t, 3, second.TotalTools)

	runs, total, err := f.urls.ListRuns(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, runs, 2)
}

func TestRunRejectsApiOwnedTool(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "/single.json")

	tools := toolinfo.NewService(f.repo, nil, nil, logging.Discard())
	_, err := tools.Create(ctx, th.Toolinfo(nil), f.owner)
	require.NoError(t, err)

	run, err := f.crawler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, run.NewTools)
	require.Len(t, run.URLs, 1)
	assert.Contains(t, run.URLs[0].Logs, "invariant")

	stored, err := f.repo.Tool.GetByName(ctx, "toolhub")
	require.NoError(t, err)
	assert.Equal(t, model.OriginAPI, stored.Origin)
}

func TestSingleRunAtATime(t *testing.T) {
	f := setup(t)

	require.True(t, f.crawler.begin())
	assert.True(t, f.crawler.Running())
	_, err := f.crawler.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	f.crawler.end()
	assert.False(t, f.crawler.Running())
	_, err = f.crawler.Run(context.Background())
	assert.NoError(t, err)
}

func TestRunLeavesNoOpenRunWhenURLsFail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "/single.json")
	require.NoError(t, f.repo.DB.Migrator().DropTable(&model.CrawlerURL{}))

	_, err := f.crawler.Run(ctx)
	require.Error(t, err)
	assert.False(t, f.crawler.Running())

	runs, total, err := f.repo.Crawler.ListRuns(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, runs)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CrawlerRunsTotal.WithLabelValues("error")))
}

func TestURLRegistry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other := th.CreateUser(t, f.repo.DB, "other")

	_, err := f.urls.AddURL(ctx, &URLRequest{URL: "ftp://example.org/x"}, f.owner)
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = f.urls.AddURL(ctx, &URLRequest{URL: site + "/a.json"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	u, err := f.urls.AddURL(ctx, &URLRequest{URL: " " + site + "/a.json "}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, site+"/a.json", u.URL)
	require.NotNil(t, u.CreatedBy)

	_, err = f.urls.AddURL(ctx, &URLRequest{URL: site + "/a.json"}, other)
	assert.ErrorIs(t, err, ErrURLExists)

	_, err = f.urls.UpdateURL(ctx, u, &URLRequest{URL: site + "/b.json"}, other)
	assert.ErrorIs(t, err, ErrForbidden)
	u, err = f.urls.UpdateURL(ctx, u, &URLRequest{URL: site + "/b.json"}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, site+"/b.json", u.URL)

	assert.ErrorIs(t, f.urls.DeleteURL(ctx, u, other), ErrForbidden)
	require.NoError(t, f.urls.DeleteURL(ctx, u, f.owner))
	_, err = f.urls.GetURL(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.urls.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduler(t *testing.T) {
	f := setup(t)

	_, err := NewScheduler(f.crawler, "not a schedule", logging.Discard())
	assert.Error(t, err)

	s, err := NewScheduler(f.crawler, "@every 1h", logging.Discard())
	require.NoError(t, err)
	s.Start()

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
