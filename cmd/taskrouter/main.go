// Package main provides the CLI entry point for taskrouter-go.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackms/taskrouter-go/cmd/taskrouter/commands"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taskrouter",
	Short: "Task routing and workload balancing engine",
	Long: `Taskrouter decides which execution pool (human, automated, or hybrid)
should handle each unit of work entering a development pipeline.

It provides:
  - Multi-factor complexity analysis and priority scoring
  - Rule-based assignment classification with confidence
  - Capacity-aware batch assignment with deferral
  - Outcome-driven model recalibration with a SQLite journal`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&commands.ConfigPath, "config", "c", "", "Engine configuration file (YAML)")

	rootCmd.AddCommand(commands.AssignCmd)
	rootCmd.AddCommand(commands.ScoreCmd)
	rootCmd.AddCommand(commands.PriorityCmd)
	rootCmd.AddCommand(commands.ClassifyCmd)
	rootCmd.AddCommand(commands.ModelCmd)
	rootCmd.AddCommand(commands.OutcomeCmd)
}
