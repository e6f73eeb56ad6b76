package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/chaoschain-reality/core"
	"github.com/NethermindEth/chaoschain-reality/insights"
)

var (
	newsShowID string
	newsLimit  int
)

// NewsCmd prints a show's feed.
var NewsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show the news feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			News []core.NewsItem `json:"news"`
		}
		if err := get("/api/shows/"+newsShowID+"/news?limit="+strconv.Itoa(newsLimit), &resp); err != nil {
			return err
		}
		for _, n := range resp.News {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", n.CreatedAt.Format("2006-01-02 15:04:05"), n.Headline)
		}
		return nil
	},
}

var recapShowID string

// RecapCmd prints a narrated summary of the latest news.
var RecapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Summarize recent events",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Recap insights.Recap `json:"recap"`
		}
		if err := get("/api/shows/"+recapShowID+"/recap", &resp); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", resp.Recap.Title, resp.Recap.Summary)
		return nil
	},
}

func init() {
	NewsCmd.Flags().StringVar(&newsShowID, "show", "", "Show ID")
	NewsCmd.Flags().IntVar(&newsLimit, "limit", 20, "Number of items")
	NewsCmd.MarkFlagRequired("show")

	RecapCmd.Flags().StringVar(&recapShowID, "show", "", "Show ID")
	RecapCmd.MarkFlagRequired("show")
}
