package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ClassifyCmd classifies the assignment leaning of a single task.
var ClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the assignment leaning of a task",
	Long: `Walk the assignment decision tree for a single task and print the
categorical leaning, its confidence, and the rule path taken.`,
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
		rec := eng.ClassifyAssignment(task, loadSingleTaskContext(task.ID, 0))

		if scoreJSON {
			printJSON(rec)
			return nil
		}

		fmt.Printf("Category:   %s\n", rec.Category)
		fmt.Printf("Confidence: %.2f\n", rec.Confidence)
		fmt.Printf("Reason:     %s\n", rec.Reason)
		return nil
	},
}

func init() {
	addTaskFlags(ClassifyCmd)
}
