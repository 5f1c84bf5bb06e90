package main

import (
	"errors"
	"fmt"
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/lending-service/lending/app"
	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

//	@title			Lending Service API
//	@version		1.0
//	@description	Book lending and overdue notifications.
//	@BasePath		/api/v1

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug bool
		store string
		queue string
	)
	loadConfig := func() (*config.Config, error) {
		opts := []config.Option{config.WithWriteTimeout(time.Minute)}
		if debug {
			opts = append(opts, config.WithLogLevel(zapcore.DebugLevel))
		}
		cfg := config.NewConfig(opts...)
		if store != "" {
			cfg.Store = config.StoreDriver(store)
		}
		if queue != "" {
			cfg.Queue.Driver = config.QueueDriver(queue)
		}
		return cfg, cfg.Validate()
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, the overdue scheduler and the delivery worker",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return app.Run(cfg)
		},
	}

	root := &cobra.Command{
		Use:          "lending",
		Short:        "Book lending service",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "debug log level")
	root.PersistentFlags().StringVar(&store, "store", "", "store driver: postgres | memory (overrides STORE_DRIVER)")
	root.PersistentFlags().StringVar(&queue, "queue", "", "queue driver: kafka | memory (overrides QUEUE_DRIVER)")

	root.AddCommand(
		serve,
		&cobra.Command{
			Use:   "scan",
			Short: "Run one overdue scan and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				report, err := app.Scan(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "overdue=%d summaries=%d recorded=%d enqueued=%d record_failed=%d enqueue_failed=%d\n",
					report.Overdue, report.Summaries, report.Recorded, report.Enqueued, report.RecordFailed, report.EnqueueFailed)
				return nil
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(*cobra.Command, []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return app.Migrate(cfg)
			},
		},
	)
	return root
}
