// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/screening"
)

var ratiosCmd = &cobra.Command{
	Use:   "ratios [results.json]",
	Short: "Aggregate hit ratios across questions from a finished run",
	Long: `Ratios reads a screening results file and prints, per round, the mean,
median, min, and max of the top-1 and top-3 hit ratios across all screened
questions.`,
	Args: cobra.ExactArgs(1),
	RunE: runRatios,
}

func runRatios(cmd *cobra.Command, args []string) error {
	out, err := screening.ReadResults(args[0])
	if err != nil {
		return err
	}
	if len(out.Ratios) == 0 {
		return fmt.Errorf("results %s contain no hit ratios (custom-background run?)", args[0])
	}

	// Group ratios by round across questions.
	rounds := 0
	for _, rs := range out.Ratios {
		if len(rs) > rounds {
			rounds = len(rs)
		}
	}

	for round := 0; round < rounds; round++ {
		var top1, top3 stats.Float64Data
		for _, rs := range out.Ratios {
			if round < len(rs) {
				top1 = append(top1, rs[round].Top1)
				top3 = append(top3, rs[round].Top3)
			}
		}

		fmt.Printf("Round %d (%d questions)\n", round, len(top1))
		if err := printRatioLine("top-1", top1); err != nil {
			return err
		}
		if err := printRatioLine("top-3", top3); err != nil {
			return err
		}
	}
	return nil
}

func printRatioLine(label string, data stats.Float64Data) error {
	mean, err := stats.Mean(data)
	if err != nil {
		return fmt.Errorf("computing %s mean: %w", label, err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return fmt.Errorf("computing %s median: %w", label, err)
	}
	min, err := stats.Min(data)
	if err != nil {
		return fmt.Errorf("computing %s min: %w", label, err)
	}
	max, err := stats.Max(data)
	if err != nil {
		return fmt.Errorf("computing %s max: %w", label, err)
	}

	fmt.Printf("  %s  mean %.3f  median %.3f  min %.3f  max %.3f\n", label, mean, median, min, max)
	return nil
}

func init() {
	rootCmd.AddCommand(ratiosCmd)
}
