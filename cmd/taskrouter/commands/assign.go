package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	assignTasksFile   string
	assignContextFile string
	assignFormat      string
)

// AssignCmd assigns a batch of tasks to execution pools.
var AssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a batch of tasks to execution pools",
	Long: `Assign a batch of tasks (JSON array of task requests) against the
configured pool capacities. Tasks beyond capacity are deferred, never dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if assignTasksFile == "" {
			return fmt.Errorf("tasks file is required (--tasks)")
		}

		tasks, err := loadTasks(assignTasksFile)
		if err != nil {
			return err
		}
		ctx, err := loadContext(assignContextFile)
		if err != nil {
			return err
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		assignments := eng.AssignBatch(tasks, ctx)

		if assignFormat == "json" {
			printJSON(assignments)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TASK\tPOOL\tSTATUS\tCONFIDENCE\tREASON")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, a := range assignments {
			reason := a.Reason
			if len(reason) > 60 {
				reason = reason[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
				a.TaskID, a.Pool, a.Status, a.Confidence, reason)
		}
		w.Flush()

		snap := eng.Workload()
		fmt.Printf("\nWorkload: %d human, %d ai active; %d deferred\n",
			snap.ActiveHumanTasks, snap.ActiveAITasks, len(snap.DeferredTaskIDs))

		return nil
	},
}

func init() {
	AssignCmd.Flags().StringVarP(&assignTasksFile, "tasks", "t", "", "Tasks file, JSON array of task requests (required)")
	AssignCmd.Flags().StringVar(&assignContextFile, "context", "", "Scheduling context file (JSON)")
	AssignCmd.Flags().StringVarP(&assignFormat, "format", "f", "table", "Output format (table|json)")
}
