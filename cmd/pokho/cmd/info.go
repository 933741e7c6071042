package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MouseMan32/PokHo/pkg/config"
	"github.com/MouseMan32/PokHo/pkg/region"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarize a save file",
	Long: `Summarize a save file: its size, whether it is a bare region image,
and where the creature region sits if one can be found.

Example:
  pokho info emerald.sav`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := cmd.Context().Value("config").(*config.Config)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		blob, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			return
		}

		exact := "no"
		if region.IsRegionLength(len(blob)) {
			exact = "yes"
		}

		fmt.Printf("File: %s\n", args[0])
		fmt.Printf("Size: %d bytes\n", len(blob))
		fmt.Printf("Exact region image: %s\n", exact)

		candidates, err := region.Locate(blob, cfg.ScanParams())
		if err != nil {
			fmt.Printf("No creature region found\n")
			return
		}

		best := candidates[0]
		fmt.Printf("Best region offset: 0x%X (score %.1f, %d creatures)\n",
			best.Offset, best.Score, best.ValidCount)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
