package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/chaoschain-reality/cmd/showctl/commands"
)

var rootCmd = &cobra.Command{
	Use:           "showctl",
	Short:         "Reality show control CLI",
	Long:          `Command line interface for driving shows through the showrunner API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.APIURL, "api-url", "http://localhost:3000", "showrunner API URL")

	rootCmd.AddCommand(commands.RiskCmd)
	rootCmd.AddCommand(commands.DecideCmd)
	rootCmd.AddCommand(commands.ActCmd)
	rootCmd.AddCommand(commands.EliminateCmd)
	rootCmd.AddCommand(commands.NewsCmd)
	rootCmd.AddCommand(commands.RecapCmd)
	rootCmd.AddCommand(commands.CastCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
