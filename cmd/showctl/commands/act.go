package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type receiptJSON struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}

var actShowID string

// ActCmd applies one catalog action: showctl act argue 3 7 --show 1
var ActCmd = &cobra.Command{
	Use:   "act <action> <agentId>...",
	Short: "Apply an action to one or two agents",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]interface{}{"showId": actShowID, "agentIds": args[1:]}
		var resp struct {
			Message      string        `json:"message"`
			Transactions []receiptJSON `json:"transactions"`
		}
		if err := post("/api/actions/"+args[0], body, &resp); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
		for i := range resp.Transactions {
			printReceipt(cmd, &resp.Transactions[i])
		}
		return nil
	},
}

func init() {
	ActCmd.Flags().StringVar(&actShowID, "show", "", "Show ID")
	ActCmd.MarkFlagRequired("show")
}

func printReceipt(cmd *cobra.Command, r *receiptJSON) {
	if r == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  tx %s (block %d, gas %d)\n", r.Hash, r.BlockNumber, r.GasUsed)
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
