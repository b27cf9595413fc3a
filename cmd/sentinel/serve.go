package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sentinel-hse/sentinel/pkg/budget"
	"github.com/sentinel-hse/sentinel/pkg/server"
	"github.com/sentinel-hse/sentinel/pkg/usage"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the report API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var token string
			if cfg.AuthTokenEnv != "" {
				token = os.Getenv(cfg.AuthTokenEnv)
				if token == "" {
					return fmt.Errorf("environment variable %s is not set", cfg.AuthTokenEnv)
				}
			}

			client, err := buildClient(cfg)
			if err != nil {
				return fmt.Errorf("init completion client: %w", err)
			}
			if client.IsDemo() {
				log.Printf("no API key configured, running in demo mode")
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			archive, err := openArchive(cfg)
			if err != nil {
				return err
			}
			if archive != nil {
				defer func() { _ = archive.Close() }()
			}

			var enforcer *budget.Enforcer
			if cfg.Budget.Enabled {
				enforcer = budget.New(cfg.Budget.Policies, store)
			}

			srv := server.New(cfg, client, usage.NewAccumulator(), store, archive, enforcer, token)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
