package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	decideShowID  string
	decideContext string
	decideExecute bool
)

// DecideCmd asks for the next decision and optionally applies it.
var DecideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Fetch the next AI decision",
	Long:  `Fetch the next AI decision for a show. With --execute the decision is applied on chain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"showId": decideShowID, "context": decideContext}
		path := "/api/decision"
		if decideExecute {
			path += "/execute"
		}
		var resp struct {
			Decision struct {
				Action     string   `json:"action"`
				Parameters []string `json:"parameters"`
				Raw        string   `json:"rawResponse"`
			} `json:"aiDecision"`
			Message     string       `json:"message"`
			Transaction *receiptJSON `json:"transaction"`
		}
		if err := post(path, body, &resp); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Decision: %s(%v)\n", resp.Decision.Action, joinIDs(resp.Decision.Parameters))
		if decideExecute {
			fmt.Fprintln(out, resp.Message)
			printReceipt(cmd, resp.Transaction)
		}
		return nil
	},
}

func init() {
	DecideCmd.Flags().StringVar(&decideShowID, "show", "", "Show ID")
	DecideCmd.Flags().StringVar(&decideContext, "context", "", "Extra producer notes for the prompt")
	DecideCmd.Flags().BoolVar(&decideExecute, "execute", false, "Apply the decision")
	DecideCmd.MarkFlagRequired("show")
}
