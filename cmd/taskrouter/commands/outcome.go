package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackms/taskrouter-go/internal/shared"
)

var outcomeFile string

// OutcomeCmd records completed-task outcomes.
var OutcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record task outcomes",
	Long: `Record completed-task outcomes (JSON array) into the learner. Reassigned
and failed outcomes immediately adjust pool accuracy; full recalibration runs
every configured batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outcomeFile == "" {
			return fmt.Errorf("outcomes file is required (--file)")
		}

		data, err := os.ReadFile(outcomeFile)
		if err != nil {
			return fmt.Errorf("failed to read outcomes file: %w", err)
		}
		var outcomes []shared.TaskOutcome
		if err := json.Unmarshal(data, &outcomes); err != nil {
			return fmt.Errorf("failed to parse outcomes file: %w", err)
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		for _, outcome := range outcomes {
			eng.RecordOutcome(outcome)
		}

		stats := eng.Stats()
		model := eng.CurrentModel()
		fmt.Printf("Recorded %d outcomes\n", len(outcomes))
		fmt.Printf("Model version %d (aiMax=%.1f humanMin=%.1f, %d patterns)\n",
			model.Version, model.Thresholds.AIMax, model.Thresholds.HumanMin, len(model.Patterns))
		fmt.Printf("Accuracy: human=%.2f ai=%.2f\n", model.Accuracy(shared.PoolHuman), model.Accuracy(shared.PoolAI))
		fmt.Printf("Outcomes recorded this run: %d\n", stats.OutcomesRecorded)
		return nil
	},
}

func init() {
	OutcomeCmd.Flags().StringVarP(&outcomeFile, "file", "f", "", "Outcomes file, JSON array (required)")
}
