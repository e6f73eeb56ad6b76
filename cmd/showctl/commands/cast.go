package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/NethermindEth/chaoschain-reality/ai"
	"github.com/NethermindEth/chaoschain-reality/config"
	"github.com/NethermindEth/chaoschain-reality/core"
)

var (
	castTheme  string
	castSize   int
	castShowID string
	castOut    string
)

// CastCmd generates a roster with the text service and writes it as a schedule file
// the showrunner can seed its in-memory chain from. It does not call the API.
var CastCmd = &cobra.Command{
	Use:   "cast",
	Short: "Generate a cast into a schedule file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		llmCfg := ai.DefaultLLMConfig()
		llmCfg.MaxTokens = 2000
		if cfg.AIModel != "" {
			llmCfg.Model = cfg.AIModel
		}
		llm, err := ai.NewOpenAILLM(ai.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.AIBaseURL, Timeout: 2 * time.Minute, LLM: llmCfg})
		if err != nil {
			return err
		}
		cast, err := ai.GenerateCast(context.Background(), llm, castTheme, castSize)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(scheduleFor(castShowID, cast))
		if err != nil {
			return err
		}
		if castOut == "" || castOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(castOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write schedule: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d contestants for show %s to %s\n", len(cast), castShowID, castOut)
		return nil
	},
}

func init() {
	CastCmd.Flags().StringVar(&castTheme, "theme", "tropical island", "Show theme")
	CastCmd.Flags().IntVar(&castSize, "size", 6, "Number of contestants")
	CastCmd.Flags().StringVar(&castShowID, "show", "1", "Show ID in the generated schedule")
	CastCmd.Flags().StringVar(&castOut, "out", "", "Output file (default stdout)")
}

func scheduleFor(showID string, cast []core.Agent) config.Schedule {
	show := config.ShowSchedule{ID: showID, DecisionEvery: config.DefaultDecisionEvery}
	for _, a := range cast {
		show.Agents = append(show.Agents, config.SeedAgent{ID: a.ID, Name: a.Name, Traits: a.Traits})
	}
	return config.Schedule{Shows: []config.ShowSchedule{show}}
}
