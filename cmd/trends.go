package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/trends"
	"github.com/spf13/cobra"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Print the beauty trend catalog grouped by category",
	RunE:  runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)

	trendsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runTrends(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	groups := trends.Categorize(trends.NewCatalog(cfg.Trends.Items, 0).All())

	if jsonOutput {
		data, err := json.MarshalIndent(groups, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode trends: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, g := range groups {
		fmt.Printf("%s (%d)\n", g.Category, len(g.Trends))
		for _, t := range g.Trends {
			fmt.Printf("  %s %s [%s]\n", t.Icon, t.Title, t.Tag)
			fmt.Printf("     %s\n", t.Description)
		}
		fmt.Println()
	}
	return nil
}
