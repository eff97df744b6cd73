package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cocan/internal/advisor"
	"cocan/internal/evaluation"
)

var (
	evalFormat string
	evalEvents bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [scenario...]",
	Short: "Benchmark the advisor across scenarios",
	Long: `Play one headless game per scenario (all of them by default) with the
configured advisor and report served dishes, scores and reactions.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalFormat, "format", "o", "table", "Output format: table, json or yaml")
	evaluateCmd.Flags().BoolVar(&evalEvents, "events", false, "Include per-dish events in json and yaml output")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	switch evalFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q", evalFormat)
	}
	cfg, log, err := loadBaseConfig()
	if err != nil {
		return err
	}
	if len(args) == 0 && scenarioFlag != "" {
		args = []string{scenarioFlag}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := advisor.NewModel(cfg.Advisor)
	if err != nil {
		return err
	}
	label := "heuristic"
	if model != nil {
		label = cfg.Advisor.Provider + "/" + cfg.Advisor.Model
	}
	adv := advisor.New(model, log.Named("advisor"), cfg.Advisor.Timeout)
	evaluator := evaluation.NewEvaluator(cfg, adv, label, log.Named("evaluation"))

	results, err := evaluator.EvaluateAll(ctx, args...)
	if err != nil {
		return err
	}
	if !evalEvents {
		for _, r := range results {
			r.Events = nil
		}
	}

	switch evalFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(results)
	}

	bold := color.New(color.Bold)
	bold.Printf("%-16s %6s %6s %6s %8s %9s\n", "SCENARIO", "SERVED", "SCORE", "SUM", "MEAN", "DISCARDED")
	for _, r := range results {
		mean := "-"
		if m, ok := r.Metrics["mean_score"].(float64); ok {
			mean = fmt.Sprintf("%.1f", m)
		}
		line := fmt.Sprintf("%-16s %6v %6v %6v %8s %9v", r.Scenario, r.Metrics["served"], r.Metrics["total_score"], r.Metrics["total_sum"], mean, r.Metrics["discarded"])
		if r.Finished {
			fmt.Println(line)
		} else {
			color.Yellow("%s  (tick limit)", line)
		}
	}
	return nil
}
