package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/chaoschain-reality/core"
)

var riskShowID string

// RiskCmd prints a show's risk table.
var RiskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Show risk rankings",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Rankings []core.RiskRanking `json:"riskRankings"`
		}
		if err := get("/api/shows/"+riskShowID+"/risk", &resp); err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tAGENT\tNAME\tRISK\tPOPULARITY")
		for _, r := range resp.Rankings {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", r.Rank, r.AgentID, r.Name, r.RiskScore, r.Popularity)
		}
		return w.Flush()
	},
}

func init() {
	RiskCmd.Flags().StringVar(&riskShowID, "show", "", "Show ID")
	RiskCmd.MarkFlagRequired("show")
}

