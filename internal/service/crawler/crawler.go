// Package crawler 抓取登记的 toolinfo.json 地址并写入工具目录
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ashwinyue/toolhub/internal/config"
	"github.com/ashwinyue/toolhub/internal/metrics"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service/toolinfo"
)

// ErrAlreadyRunning 同一时间只允许一次抓取
var ErrAlreadyRunning = errors.New("a crawl is already running")

// 单个文档的大小上限
const maxDocumentSize = 5 << 20

// 单个地址的抓取结果，用于指标标签
const (
	resultOK         = "ok"
	resultFetchError = "fetch_error"
	resultHTTPError  = "http_error"
	resultInvalid    = "invalid"
)

// Crawler 抓取器
type Crawler struct {
	repo      *repository.Repositories
	tools     *toolinfo.Service
	client    *http.Client
	userAgent string
	metrics   *metrics.Metrics
	logger    *logrus.Logger

	mu      sync.Mutex
	running bool
}

// New 创建抓取器
func New(repo *repository.Repositories, tools *toolinfo.Service, cfg config.CrawlerConfig, m *metrics.Metrics, logger *logrus.Logger) *Crawler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Toolhub crawler"
	}
	return &Crawler{
		repo:      repo,
		tools:     tools,
		client:    &http.Client{Timeout: cfg.RequestTimeout()},
		userAgent: userAgent,
		metrics:   m,
		logger:    logger,
	}
}

// Running 是否有抓取正在进行
func (c *Crawler) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Crawler) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	return true
}

func (c *Crawler) end() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Run 抓取全部登记的地址，返回本次抓取记录（含每个地址的结果）
func (c *Crawler) Run(ctx context.Context) (*model.CrawlerRun, error) {
	if !c.begin() {
		return nil, ErrAlreadyRunning
	}
	defer c.end()

	// 先加载地址，避免失败时留下没有结束时间的抓取记录
	urls, err := c.repo.Crawler.AllURLs(ctx)
	if err != nil {
		c.metrics.RecordCrawlerRun("error")
		return nil, fmt.Errorf("load urls: %w", err)
	}

	run := &model.CrawlerRun{ID: uuid.New().String(), StartDate: time.Now()}
	if err := c.repo.Crawler.CreateRun(ctx, run); err != nil {
		c.metrics.RecordCrawlerRun("error")
		return nil, fmt.Errorf("create run: %w", err)
	}

	log := c.logger.WithField("run_id", run.ID)
	log.WithField("urls", len(urls)).Info("crawl started")

	for _, u := range urls {
		if ctx.Err() != nil {
			log.Warn("crawl cancelled")
			break
		}
		created, updated := c.crawlURL(ctx, run, u)
		run.CrawledURLs++
		run.NewTools += created
		run.UpdatedTools += updated
	}

	total, err := c.repo.Tool.Count(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to count tools")
	}
	run.TotalTools = int(total)
	finished := time.Now()
	run.EndDate = &finished

	if err := c.repo.Crawler.UpdateRun(ctx, run); err != nil {
		c.metrics.RecordCrawlerRun("error")
		return nil, fmt.Errorf("update run: %w", err)
	}
	c.metrics.RecordCrawlerRun("success")

	log.WithFields(logrus.Fields{
		"crawled_urls":  run.CrawledURLs,
		"new_tools":     run.NewTools,
		"updated_tools": run.UpdatedTools,
		"total_tools":   run.TotalTools,
		"elapsed":       finished.Sub(run.StartDate).String(),
	}).Info("crawl finished")

	return c.repo.Crawler.GetRun(ctx, run.ID)
}

// runLog 单个地址的抓取日志，写入 CrawlerRunURL.Logs
type runLog struct {
	b strings.Builder
}

func (l *runLog) printf(format string, args ...any) {
	fmt.Fprintf(&l.b, format, args...)
	l.b.WriteByte('\n')
}

// crawlURL 抓取单个地址并写入结果，返回新建与更新的工具数
func (c *Crawler) crawlURL(ctx context.Context, run *model.CrawlerRun, u *model.CrawlerURL) (created, updated int) {
	result := &model.CrawlerRunURL{
		ID:    uuid.New().String(),
		RunID: run.ID,
		URLID: u.ID,
	}
	logs := &runLog{}
	outcome := resultOK
	start := time.Now()

	defer func() {
		result.ElapsedMs = time.Since(start).Milliseconds()
		result.Logs = logs.b.String()
		if err := c.repo.Crawler.CreateRunURL(ctx, result); err != nil {
			c.logger.WithError(err).WithField("url", u.URL).Error("failed to save crawl result")
		}
		c.metrics.RecordCrawledURL(outcome)
	}()

	body, resp, err := c.fetch(ctx, u.URL)
	if err != nil {
		logs.printf("Error fetching %s: %v", u.URL, err)
		outcome = resultFetchError
		return 0, 0
	}
	result.StatusCode = resp.StatusCode
	result.Redirected = resp.Request != nil && resp.Request.URL.String() != u.URL
	if result.Redirected {
		logs.printf("Redirected to %s", resp.Request.URL)
	}
	if resp.StatusCode != http.StatusOK {
		logs.printf("Unexpected status %d fetching %s", resp.StatusCode, u.URL)
		outcome = resultHTTPError
		return 0, 0
	}

	data, repaired, err := repairJSON(body)
	if err != nil {
		logs.printf("Invalid JSON: %v", err)
		outcome = resultInvalid
		return 0, 0
	}
	if repaired {
		logs.printf("Repaired malformed JSON")
	}

	records, err := decodeRecords(data)
	if err != nil {
		logs.printf("Invalid toolinfo document: %v", err)
		outcome = resultInvalid
		return 0, 0
	}

	if u.CreatedBy == nil {
		logs.printf("URL has no owner, skipping %d records", len(records))
		outcome = resultInvalid
		return 0, 0
	}

	result.SchemaValid = true
	for i, record := range records {
		if err := c.tools.Validate(record); err != nil {
			result.SchemaValid = false
			logs.printf("Record %d failed validation: %v", i, err)
			continue
		}

		tool, isNew, isUpdated, err := c.tools.FromToolInfo(ctx, record, u.CreatedBy, model.OriginCrawler)
		if err != nil {
			logs.printf("Record %d not saved: %v", i, err)
			continue
		}
		switch {
		case isNew:
			created++
			logs.printf("Created %s", tool.Name)
		case isUpdated:
			updated++
			logs.printf("Updated %s", tool.Name)
		default:
			logs.printf("Unchanged %s", tool.Name)
		}
	}
	if !result.SchemaValid {
		outcome = resultInvalid
	}
	return created, updated
}

// fetch 获取文档内容，超过大小上限视为错误
func (c *Crawler) fetch(ctx context.Context, rawURL string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, resp, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxDocumentSize {
		return nil, resp, fmt.Errorf("document larger than %d bytes", maxDocumentSize)
	}
	return body, resp, nil
}
