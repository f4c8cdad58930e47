package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler 按 cron 表达式定时抓取
type Scheduler struct {
	cron    *cron.Cron
	crawler *Crawler
	logger  *logrus.Logger
}

// NewScheduler 创建定时任务，schedule 支持标准 cron 表达式与 @hourly 等描述符
func NewScheduler(crawler *Crawler, schedule string, logger *logrus.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Scheduler{cron: cron.New(), crawler: crawler, logger: logger}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid crawler schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start 启动定时任务
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度，返回的 context 在正在执行的抓取结束后关闭
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) tick() {
	run, err := s.crawler.Run(context.Background())
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		s.logger.Info("skipping scheduled crawl, previous crawl still running")
	case err != nil:
		s.logger.WithError(err).Error("scheduled crawl failed")
	default:
		s.logger.WithField("run_id", run.ID).Debug("scheduled crawl complete")
	}
}
