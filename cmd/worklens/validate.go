package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/worklens/worklens/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <evidence-file>",
	Short: "Validate an evidence snapshot without correlating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadEvidence(args[0])
		if err != nil {
			return err
		}

		type rejection struct {
			ID     string `json:"id"`
			Reason string `json:"reason"`
		}
		var rejected []rejection
		seen := make(map[string]bool, len(items))
		for i := range items {
			if err := items[i].Validate(); err != nil {
				rejected = append(rejected, rejection{ID: items[i].ID, Reason: err.Error()})
				continue
			}
			if seen[items[i].ID] {
				rejected = append(rejected, rejection{ID: items[i].ID, Reason: "duplicate id"})
				continue
			}
			seen[items[i].ID] = true
		}

		if jsonOutput {
			return printJSON(map[string]interface{}{
				"total":    len(items),
				"valid":    len(items) - len(rejected),
				"rejected": rejected,
			})
		}

		if len(rejected) == 0 {
			fmt.Printf("%s %d items, all valid\n", ui.RenderPass(ui.IconPass), len(items))
			return nil
		}
		fmt.Printf("%s %d of %d items rejected:\n", ui.RenderFail(ui.IconFail), len(rejected), len(items))
		for _, r := range rejected {
			id := r.ID
			if id == "" {
				id = "(no id)"
			}
			fmt.Printf("  %s %s: %s\n", ui.RenderFail(ui.IconFail), id, r.Reason)
		}
		return fmt.Errorf("%d invalid items", len(rejected))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
