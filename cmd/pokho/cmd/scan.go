package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MouseMan32/PokHo/pkg/config"
	"github.com/MouseMan32/PokHo/pkg/region"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Locate the creature region in a save file",
	Long: `Locate the creature region in a save file and print the ranked
candidate offsets. With --hint the search stays inside a window around
the hinted offset; without it the whole file is swept.

Examples:
  pokho scan emerald.sav
  pokho scan emerald.sav --hint 0x22600
  pokho scan emerald.sav --top 3 --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := cmd.Context().Value("config").(*config.Config)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		hint, _ := cmd.Flags().GetString("hint")
		top, _ := cmd.Flags().GetInt("top")
		asJSON, _ := cmd.Flags().GetBool("json")

		blob, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			os.Exit(1)
		}

		ranked, err := scanBlob(blob, hint, cfg.ScanParams())
		if err != nil {
			fmt.Printf("Error scanning file: %v\n", err)
			os.Exit(1)
		}
		if top > 0 && len(ranked) > top {
			ranked = ranked[:top]
		}

		if asJSON {
			if err := candidatesJSON(os.Stdout, ranked); err != nil {
				fmt.Printf("Error encoding candidates: %v\n", err)
				os.Exit(1)
			}
			return
		}
		renderCandidates(os.Stdout, ranked)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("hint", "", "Approximate region offset (decimal or 0x hex)")
	scanCmd.Flags().Int("top", 0, "Print at most this many candidates")
	scanCmd.Flags().Bool("json", false, "Print candidates as JSON")
}

// scanBlob runs the hinted or full-sweep locator over one blob. The ranked
// list always has the best candidate first.
func scanBlob(blob []byte, hintText string, params region.ScanParams) ([]region.Candidate, error) {
	if hintText != "" {
		hint, err := region.ParseOffset(hintText)
		if err != nil {
			return nil, err
		}
		_, ranked, err := region.Autopick(blob, hint, params)
		if err != nil {
			return nil, err
		}
		return ranked, nil
	}
	return region.Locate(blob, params)
}
