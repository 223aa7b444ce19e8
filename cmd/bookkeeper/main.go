package main

import (
	"context"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/audit"
	"github.com/smallbiznis/bookkeeper/internal/chartaccount"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/migration"
	"github.com/smallbiznis/bookkeeper/internal/observability"
	"github.com/smallbiznis/bookkeeper/internal/seed"
	"github.com/smallbiznis/bookkeeper/internal/server"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const startTimeout = 30 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "bookkeeper",
		Short: "Multi-tenant bookkeeping ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand(), newMigrateCommand(), newSeedCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				infrastructure(),
				migration.Module,
				server.Module,
				fx.Invoke(bootstrapGlobalChart),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), infrastructure(), migration.Module)
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the starter global chart of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(),
				infrastructure(),
				migration.Module,
				audit.Module,
				chartaccount.Module,
				fx.Invoke(func(svc chartdomain.Service, log *zap.Logger) error {
					_, err := seed.EnsureGlobalChart(context.Background(), svc, log)
					return err
				}),
			)
		},
	}
}

func infrastructure() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
	)
}

// runOnce starts the graph so invokes and OnStart hooks run, then stops it.
func runOnce(ctx context.Context, opts ...fx.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app := fx.New(append(opts, fx.NopLogger)...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), startTimeout)
	defer cancelStop()
	return app.Stop(stopCtx)
}

func bootstrapGlobalChart(cfg config.Config, svc chartdomain.Service, log *zap.Logger) error {
	if !cfg.Bootstrap.GlobalChart {
		return nil
	}
	_, err := seed.EnsureGlobalChart(context.Background(), svc, log)
	return err
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
