package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	eliminateShowID  string
	eliminatePreview bool
)

// EliminateCmd eliminates the riskiest low-popularity agent.
var EliminateCmd = &cobra.Command{
	Use:   "eliminate",
	Short: "Eliminate an agent",
	Long:  `Select and eliminate an agent. With --preview the selection is shown and nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/elimination"
		if eliminatePreview {
			path += "/preview"
		}
		var resp struct {
			Agent struct {
				ID   string `json:"agentId"`
				Name string `json:"name"`
			} `json:"eliminatedAgent"`
			Reason      string       `json:"eliminationReason"`
			Remaining   []struct{}   `json:"remainingAgents"`
			Transaction *receiptJSON `json:"transaction"`
		}
		if err := post(path, map[string]string{"showId": eliminateShowID}, &resp); err != nil {
			return err
		}
		verb := "Eliminated"
		if eliminatePreview {
			verb = "Would eliminate"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s): %s. %d agent(s) remain.\n",
			verb, resp.Agent.Name, resp.Agent.ID, resp.Reason, len(resp.Remaining))
		printReceipt(cmd, resp.Transaction)
		return nil
	},
}

func init() {
	EliminateCmd.Flags().StringVar(&eliminateShowID, "show", "", "Show ID")
	EliminateCmd.Flags().BoolVar(&eliminatePreview, "preview", false, "Only show who would be eliminated")
	EliminateCmd.MarkFlagRequired("show")
}
