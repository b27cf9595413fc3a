package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sentinel-hse/sentinel/pkg/budget"
	"github.com/sentinel-hse/sentinel/pkg/models"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		kind       string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded token usage and spend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := context.Background()
			summaries, err := store.Summary(ctx, models.AnalysisKind(kind))
			if err != nil {
				return err
			}

			if len(summaries) == 0 {
				fmt.Println("No usage data found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tMODEL\tREPORTS\tPROMPT\tCOMPLETION\tTOTAL\tCOST")
			var totalCost float64
			var totalTokens int
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t$%.6f\n",
					s.Kind, s.Model, s.RequestCount, s.TotalPrompt, s.TotalCompletion, s.TotalTokens, s.TotalCost)
				totalCost += s.TotalCost
				totalTokens += s.TotalTokens
			}
			fmt.Fprintf(w, "\t\t\t\t\t%d\t$%.6f\n", totalTokens, totalCost)
			if err := w.Flush(); err != nil {
				return err
			}

			if cfg.Budget.Enabled {
				enforcer := budget.New(cfg.Budget.Policies, store)
				statuses, err := enforcer.StatusFor(ctx)
				if err != nil {
					return err
				}
				fmt.Println()
				bw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(bw, "BUDGET KIND\tPERIOD\tCAP\tSPENT\tREMAINING")
				for _, st := range statuses {
					k := st.Policy.Kind
					if k == "" {
						k = "all"
					}
					fmt.Fprintf(bw, "%s\t%s\t$%.2f\t$%.6f\t$%.6f\n",
						k, st.Policy.Period, st.Policy.MaxCost, st.Spent, st.Remaining)
				}
				return bw.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by analysis kind")
	return cmd
}
