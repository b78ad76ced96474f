package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/planrisk/planrisk/internal/ai"
	"github.com/planrisk/planrisk/internal/config"
	"github.com/planrisk/planrisk/internal/plan"
	"github.com/planrisk/planrisk/internal/report"
	"github.com/planrisk/planrisk/internal/risk"
	"github.com/planrisk/planrisk/internal/workspace"
)

// Collection budgets for the optional workspace inputs, in characters.
const (
	diffCollectBudget   = 10000
	configCollectBudget = 20000
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [plan-file]",
	Short: "Analyze a Terraform plan and print the risk report",
	Long: `Analyze a binary Terraform plan file and print the risk report.

The plan file may be given as an argument or through the PLANFILE environment
variable. The plan is rendered with 'terraform show', resource changes are
classified and aggregated into a blast radius assessment, and three dependent
reasoning stages produce the report narratives.

A missing or unreadable plan stops the run. A failed reasoning stage does not:
that section degrades to a marked placeholder and the rest of the report is
still produced.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		logger := newLogger()
		defer logger.Sync()

		cfg, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		planPath := cfg.PlanFile
		if len(args) > 0 {
			planPath = args[0]
		}
		if planPath == "" {
			fmt.Fprintf(os.Stderr, "Error: no plan file given (argument or PLANFILE)\n")
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runID := uuid.New().String()
		logger.Info("starting plan analysis",
			zap.String("run_id", runID),
			zap.String("plan", planPath),
			zap.String("repo", cfg.Run.Repo()),
			zap.String("pr", cfg.Run.PullNum))

		// Hard precondition: without plan text there is nothing to analyze.
		planText, err := plan.ShowText(ctx, planPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Everything below degrades gracefully when absent.
		planJSON := plan.ShowJSON(ctx, planPath, logger)
		changes := plan.ExtractChanges(planJSON, logger)
		assessment := risk.Assess(changes)

		logger.Info("blast radius assessed",
			zap.Int("total_changes", len(changes)),
			zap.Int("critical_or_high", len(assessment.CriticalChanges)),
			zap.String("level", assessment.CriticalityLevel.String()))

		codeDiff := workspace.CollectDiff(ctx, planPath, cfg.Run.BaseBranch, diffCollectBudget, logger)
		configText := workspace.CollectConfig(planPath, configCollectBudget)

		client, err := ai.NewClient(ctx, &ai.Config{
			Region: cfg.Region,
			Model:  cfg.TargetModel(),
			Logger: logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create reasoning client: %v\n", err)
			os.Exit(1)
		}

		pc, err := ai.NewPipeline(client, logger).Run(ctx, ai.Inputs{
			Run:        cfg.Run,
			Changes:    changes,
			Assessment: assessment,
			PlanText:   planText,
			CodeDiff:   codeDiff,
			ConfigText: configText,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		rep := report.New(runID, cfg.Run, assessment,
			pc.ContextAnalysis, pc.TechnicalAnalysis, pc.Recommendations)

		switch format {
		case "json":
			data, err := rep.JSON()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
		case "yaml":
			data, err := rep.YAML()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(string(data))
		default:
			fmt.Println(rep.Render())
		}

		if rep.Degraded() {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s Report is partial: one or more analysis stages degraded\n", yellow("⚠"))
		}
	},
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}
