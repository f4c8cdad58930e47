package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashwinyue/toolhub/internal/database"
	"github.com/ashwinyue/toolhub/internal/model"
)

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed built-in groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.New(opts.cfg, database.Options{SkipMigrate: true})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			opts.logger.Info("migration complete")
			return nil
		},
	}
}

func newCrawlCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Fetch every registered toolinfo URL once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.services.Crawler.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "crawled %d urls: %d new, %d updated, %d tools total\n",
				run.CrawledURLs, run.NewTools, run.UpdatedTools, run.TotalTools)
			return nil
		},
	}
}

func newCASLCmd(opts *cliOptions) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "casl",
		Short: "Print the CASL rules for a user (anonymous when --user is empty)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			var user *model.User
			if username != "" {
				user, err = a.repos.Auth.GetUserByUsername(cmd.Context(), username)
				if err != nil {
					return fmt.Errorf("user %q: %w", username, err)
				}
			}

			rules := a.services.CASL.RulesForUser(cmd.Context(), user)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rules)
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "username")
	return cmd
}

func newReindexCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the Elasticsearch tool index from the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.services.Search.Indexed() {
				return errors.New("elasticsearch is not configured")
			}
			n, err := a.services.Search.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d tools\n", n)
			return nil
		},
	}
}
