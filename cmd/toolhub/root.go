package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ashwinyue/toolhub/internal/config"
	"github.com/ashwinyue/toolhub/internal/database"
	"github.com/ashwinyue/toolhub/internal/logging"
	"github.com/ashwinyue/toolhub/internal/metrics"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service"
)

type cliOptions struct {
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		configPath: os.Getenv("CONFIG_PATH"),
	}

	root := &cobra.Command{
		Use:           "toolhub",
		Short:         "Toolhub catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logging.New(cfg.Log)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", opts.configPath, "config file (yaml); TOOLHUB_* env vars override it")

	root.AddCommand(
		newServeCmd(&opts),
		newMigrateCmd(&opts),
		newCrawlCmd(&opts),
		newCASLCmd(&opts),
		newReindexCmd(&opts),
	)

	return root
}

// app 子命令共享的运行时依赖
type app struct {
	db       *database.DB
	repos    *repository.Repositories
	services *service.Services
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// bootstrap 连接数据库与可选的 Redis/Elasticsearch 并构造服务
func bootstrap(ctx context.Context, opts *cliOptions, m *metrics.Metrics) (*app, error) {
	db, err := database.New(opts.cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	a := &app{db: db, closers: []func() error{db.Close}}
	opts.logger.WithField("database", opts.cfg.Database.DBName).Info("database connected")

	redisClient := service.NewRedisClient(ctx, opts.cfg.Redis, opts.logger)
	if redisClient != nil {
		a.closers = append(a.closers, redisClient.Close)
	}
	index := service.NewSearchIndex(ctx, opts.cfg.Elastic, opts.logger)

	a.repos = repository.NewRepositories(db.DB)
	a.services = service.NewServices(a.repos, opts.cfg, service.Deps{Redis: redisClient, Index: index}, m, opts.logger)
	return a, nil
}
