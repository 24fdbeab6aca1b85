package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kavak-agent/internal/config"
	"kavak-agent/internal/logger"
	"kavak-agent/internal/repository"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:     "kavakctl",
		Short:   "Kavak sales agent tooling",
		Long:    "kavakctl drives the sales agent locally, normalizes catalog files and loads the knowledge base.",
		Version: version,

		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newChatCmd(opts), newCatalogCmd(opts), newKBCmd(opts))
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	return logger.New(o.logLevel, "console")
}

// openRepository connects to Postgres using the environment configuration.
func openRepository() (*repository.PostgresRepository, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.PostgreSQL.Enabled {
		return nil, nil, fmt.Errorf("database connection: set DATABASE_URL or PG_HOST")
	}
	repo, err := repository.NewPostgresRepository(cfg.GetPostgreSQLDSN(), cfg.PostgreSQL.MaxConnections, cfg.PostgreSQL.MaxIdleConnections)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection: %w", err)
	}
	return repo, cfg, nil
}
