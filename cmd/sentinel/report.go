package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sentinel-hse/sentinel/pkg/export"
	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/prompt"
)

func newReportCmd() *cobra.Command {
	var (
		configPath string
		format     string
		output     string

		incident models.IncidentFields
		severity string
		audit    models.AuditFields
		policy   models.PolicyFields
		esg      models.ESGFields
	)

	cmd := &cobra.Command{
		Use:   "report <incident|audit|policy|esg>",
		Short: "Generate a single report from command-line fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := models.AnalysisKind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown analysis kind %q", args[0])
			}

			var req models.AnalysisRequest
			switch kind {
			case models.KindIncident:
				incident.Severity = models.Severity(severity)
				req = models.NewIncidentRequest(incident)
			case models.KindAudit:
				req = models.NewAuditRequest(audit)
			case models.KindPolicy:
				req = models.NewPolicyRequest(policy)
			case models.KindESG:
				req = models.NewESGRequest(esg)
			}
			if err := req.Validate(); err != nil {
				return err
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			f, err := export.Parse(format)
			if err != nil {
				return err
			}

			client, err := buildClient(cfg)
			if err != nil {
				return fmt.Errorf("init completion client: %w", err)
			}

			ctx := context.Background()
			start := time.Now()
			system, user := prompt.Build(req)
			res := client.Complete(ctx, req, system, user)
			if !res.Success {
				return fmt.Errorf("report generation failed: %s", res.Text)
			}

			now := time.Now().UTC()
			rep := models.ArchivedReport{
				ID:        uuid.NewString(),
				Kind:      kind,
				Request:   req,
				Text:      res.Text,
				Model:     res.Model,
				Tokens:    res.Tokens,
				Cost:      res.Cost,
				Demo:      client.IsDemo(),
				LatencyMs: time.Since(start).Milliseconds(),
				CreatedAt: now,
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if err := store.Record(ctx, models.ReportRecord{
				Kind:             kind,
				Model:            res.Model,
				PromptTokens:     res.PromptTokens,
				CompletionTokens: res.CompletionTokens,
				TotalTokens:      res.Tokens,
				Cost:             res.Cost,
				CreatedAt:        now,
			}); err != nil {
				return fmt.Errorf("record usage: %w", err)
			}

			archive, err := openArchive(cfg)
			if err != nil {
				return err
			}
			if archive != nil {
				defer func() { _ = archive.Close() }()
				if err := archive.Save(ctx, rep); err != nil {
					return fmt.Errorf("archive report: %w", err)
				}
			}

			body, err := export.Render(f, rep)
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, body, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report written to %s (%d tokens, $%.6f)\n", output, res.Tokens, res.Cost)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			fmt.Fprintf(cmd.ErrOrStderr(), "tokens: %d  cost: $%.6f  model: %s\n", res.Tokens, res.Cost, res.Model)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "export format: text, markdown, json, csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rendered report to a file")

	cmd.Flags().StringVar(&incident.Description, "description", "", "incident description")
	cmd.Flags().StringVar(&severity, "severity", "", `incident severity ("1 - Minor" through "5 - Critical")`)
	cmd.Flags().StringVar(&incident.Location, "location", "", "incident location")
	cmd.Flags().StringVar(&incident.Date, "date", "", "incident date")
	cmd.Flags().StringVar(&incident.Time, "time", "", "incident time")

	cmd.Flags().StringVar(&audit.Findings, "findings", "", "audit findings")
	cmd.Flags().StringVar(&audit.Standard, "standard", "", "audit standard (e.g. ISO 45001)")
	cmd.Flags().StringVar(&audit.Scope, "scope", "", "audit scope")
	cmd.Flags().StringVar(&audit.Auditor, "auditor", "", "auditor name")

	cmd.Flags().StringVar(&policy.Text, "text", "", "policy text to review")
	cmd.Flags().StringVar(&policy.Framework, "framework", "", "regulatory framework")
	cmd.Flags().StringVar(&policy.Audience, "audience", "", "policy audience")

	cmd.Flags().StringVar(&esg.Activities, "activities", "", "company activities")
	cmd.Flags().StringVar(&esg.Industry, "industry", "", "industry sector")
	cmd.Flags().StringVar(&esg.Region, "region", "", "operating region")
	cmd.Flags().StringVar(&esg.Metrics, "metrics", "", "available ESG metrics")

	return cmd
}
