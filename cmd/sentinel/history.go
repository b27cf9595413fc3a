package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinel-hse/sentinel/pkg/export"
	"github.com/sentinel-hse/sentinel/pkg/models"
)

func newHistoryCmd() *cobra.Command {
	var (
		configPath string
		kind       string
		since      string
		limit      int
		exportID   string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived reports or export one by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in config")
			}

			archive, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = archive.Close() }()

			ctx := context.Background()

			if exportID != "" {
				f, err := export.Parse(format)
				if err != nil {
					return err
				}
				rep, err := archive.Get(ctx, exportID)
				if err != nil {
					return fmt.Errorf("load report %s: %w", exportID, err)
				}
				body, err := export.Render(f, rep)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}

			opts := models.ArchiveQueryOpts{
				Kind:  models.AnalysisKind(kind),
				Limit: limit,
			}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				opts.Since = t
			}

			reports, err := archive.Query(ctx, opts)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("No archived reports found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tMODEL\tTOKENS\tCOST\tDEMO\tCREATED")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t$%.6f\t%t\t%s\n",
					r.ID, r.Kind, r.Model, r.Tokens, r.Cost, r.Demo, r.CreatedAt.Format("2006-01-02T15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by analysis kind")
	cmd.Flags().StringVar(&since, "since", "", "only reports created on or after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of reports to list")
	cmd.Flags().StringVar(&exportID, "export", "", "export a single report by ID instead of listing")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "export format: text, markdown, json, csv")
	return cmd
}
