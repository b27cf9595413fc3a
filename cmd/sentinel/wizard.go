package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sentinel-hse/sentinel/pkg/usage"
	"github.com/sentinel-hse/sentinel/pkg/wizard"
)

func newWizardCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Generate reports interactively on the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client, err := buildClient(cfg)
			if err != nil {
				return fmt.Errorf("init completion client: %w", err)
			}
			if client.IsDemo() {
				fmt.Fprintln(cmd.OutOrStdout(), "No API key configured: reports will be demo samples.")
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

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := wizard.NewRunner(client, usage.NewAccumulator(), archive, store)
			return runner.Run(ctx, os.Stdin, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
