package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Single-task flags shared across score, priority, and classify.
var (
	scoreTaskID      string
	scoreDescription string
	scoreDomain      string
	scoreTags        []string
	scoreFiles       int
	scoreHours       float64
	scoreSpecs       bool
	scorePatterns    bool
	scoreJSON        bool
)

// ScoreCmd scores the complexity of a single task.
var ScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the complexity of a task",
	Long:  `Compute the multi-factor complexity score of a single task under the current model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreDescription == "" {
			return fmt.Errorf("task description is required (--description)")
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		task := taskFromFlags(scoreTaskID, scoreDescription, scoreDomain,
			scoreTags, scoreFiles, scoreHours, scoreSpecs, scorePatterns)
		score := eng.ScoreComplexity(task)

		if scoreJSON {
			printJSON(score)
			return nil
		}

		fmt.Printf("Complexity: %.1f / 10 (bucket %d)\n\n", score.Total, score.Bucket())

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FACTOR\tSCORE")
		fmt.Fprintln(w, strings.Repeat("-", 30))
		factors := make([]string, 0, len(score.Breakdown))
		for name := range score.Breakdown {
			factors = append(factors, name)
		}
		sort.Strings(factors)
		for _, name := range factors {
			fmt.Fprintf(w, "%s\t%.1f\n", name, score.Breakdown[name])
		}
		w.Flush()

		fmt.Printf("\nRecommendation: %s (%.2f) - %s\n",
			score.Recommendation.Category, score.Recommendation.Confidence, score.Recommendation.Reason)
		return nil
	},
}

func init() {
	addTaskFlags(ScoreCmd)
}

// addTaskFlags binds the shared single-task flags to a command.
func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scoreTaskID, "id", "", "Task ID (generated when empty)")
	cmd.Flags().StringVarP(&scoreDescription, "description", "d", "", "Task description (required)")
	cmd.Flags().StringVar(&scoreDomain, "domain", "", "Task domain")
	cmd.Flags().StringSliceVarP(&scoreTags, "tags", "t", []string{}, "Task tags")
	cmd.Flags().IntVar(&scoreFiles, "files", 0, "Estimated files touched")
	cmd.Flags().Float64Var(&scoreHours, "hours", 0, "Estimated hours")
	cmd.Flags().BoolVar(&scoreSpecs, "specs", false, "Task has detailed specifications")
	cmd.Flags().BoolVar(&scorePatterns, "patterns", false, "Existing patterns cover this task")
	cmd.Flags().BoolVar(&scoreJSON, "json", false, "Output as JSON")
}
