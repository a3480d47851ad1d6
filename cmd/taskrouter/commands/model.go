package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var modelJSON bool

// ModelCmd is the parent command for routing model operations.
var ModelCmd = &cobra.Command{
	Use:   "model",
	Short: "Routing model commands",
	Long:  `Commands for inspecting and recalibrating the routing model.`,
}

var modelShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current routing model",
	Long:  `Display the current model snapshot: thresholds, accuracy rates, and learned patterns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		model := eng.CurrentModel()

		if modelJSON {
			printJSON(model)
			return nil
		}

		fmt.Printf("Model version %d", model.Version)
		if model.UpdatedAt > 0 {
			fmt.Printf(" (updated %s)", time.UnixMilli(model.UpdatedAt).Format(time.RFC3339))
		}
		fmt.Println()
		fmt.Printf("Thresholds: aiMax=%.1f humanMin=%.1f\n", model.Thresholds.AIMax, model.Thresholds.HumanMin)
		fmt.Printf("Accuracy:   human=%.2f ai=%.2f hybrid=%.2f\n",
			model.Accuracy("human"), model.Accuracy("ai"), model.Accuracy("hybrid"))

		if len(model.Patterns) == 0 {
			fmt.Println("\nNo learned patterns")
			return nil
		}

		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SIGNATURE\tASSIGNEE\tCONFIDENCE\tSUCCESS\tSEEN")
		fmt.Fprintln(w, strings.Repeat("-", 70))
		for _, p := range model.Patterns {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%d\n",
				p.Signature, p.Assignee, p.Confidence, p.SuccessRate, p.Occurrences)
		}
		w.Flush()
		return nil
	},
}

var modelRecalibrateCmd = &cobra.Command{
	Use:   "recalibrate",
	Short: "Force a model recalibration",
	Long:  `Rebuild the model from the journaled outcome window and persist the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.Recalibrate(); err != nil {
			return err
		}

		model := eng.CurrentModel()
		fmt.Printf("Recalibrated to version %d (aiMax=%.1f humanMin=%.1f, %d patterns)\n",
			model.Version, model.Thresholds.AIMax, model.Thresholds.HumanMin, len(model.Patterns))
		return nil
	},
}

func init() {
	modelShowCmd.Flags().BoolVar(&modelJSON, "json", false, "Output as JSON")
	ModelCmd.AddCommand(modelShowCmd)
	ModelCmd.AddCommand(modelRecalibrateCmd)
}
