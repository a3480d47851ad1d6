package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	priorityDeadline   string
	priorityExternal   bool
	priorityUsers      int
	priorityRevenue    float64
	priorityDependents int
)

// PriorityCmd scores the business priority of a single task.
var PriorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Score the business priority of a task",
	Long:  `Compute the business urgency/value score of a single task under the current model.`,
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
		task.AffectedUsers = priorityUsers
		task.EstimatedRevenue = priorityRevenue
		task.ExternalDeadline = priorityExternal
		if priorityDeadline != "" {
			deadline, err := time.Parse(time.RFC3339, priorityDeadline)
			if err != nil {
				return fmt.Errorf("invalid deadline (want RFC3339): %w", err)
			}
			task.DeadlineAt = deadline.UnixMilli()
		}

		ctx := loadSingleTaskContext(task.ID, priorityDependents)
		score := eng.CalculatePriority(task, ctx)

		if scoreJSON {
			printJSON(score)
			return nil
		}

		fmt.Printf("Priority: %.2f / 10 (%s)\n\n", score.Total, score.Level)

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

		fmt.Printf("\n%s\n", score.Reasoning)
		return nil
	},
}

func init() {
	addTaskFlags(PriorityCmd)
	PriorityCmd.Flags().StringVar(&priorityDeadline, "deadline", "", "Task deadline (RFC3339)")
	PriorityCmd.Flags().BoolVar(&priorityExternal, "external-deadline", false, "Deadline is externally imposed")
	PriorityCmd.Flags().IntVar(&priorityUsers, "users", 0, "Affected user count")
	PriorityCmd.Flags().Float64Var(&priorityRevenue, "revenue", 0, "Estimated revenue impact")
	PriorityCmd.Flags().IntVar(&priorityDependents, "dependents", 0, "Number of tasks blocked by this one")
}
