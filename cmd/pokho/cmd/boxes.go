package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MouseMan32/PokHo/pkg/config"
	"github.com/MouseMan32/PokHo/pkg/region"
	"github.com/MouseMan32/PokHo/pkg/species"
)

// boxesCmd represents the boxes command
var boxesCmd = &cobra.Command{
	Use:   "boxes <file>",
	Short: "Render the box grid of a save file",
	Long: `Render the creature box grid of a save file. The region offset is
located automatically unless --offset pins it. With --names the species
codes are resolved to display names.

Examples:
  pokho boxes emerald.sav
  pokho boxes emerald.sav --offset 0x22600 --names`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := cmd.Context().Value("config").(*config.Config)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		offsetText, _ := cmd.Flags().GetString("offset")
		withNames, _ := cmd.Flags().GetBool("names")

		blob, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			os.Exit(1)
		}

		off, err := resolveFileOffset(blob, offsetText, cfg.ScanParams())
		if err != nil {
			fmt.Printf("Error resolving region offset: %v\n", err)
			os.Exit(1)
		}
		grid := region.Assemble(blob, off)

		var names map[uint16]string
		if withNames {
			names = lookupNames(cfg, grid)
		}
		renderGrid(os.Stdout, grid, names)
	},
}

func init() {
	rootCmd.AddCommand(boxesCmd)
	boxesCmd.Flags().String("offset", "", "Region offset override (decimal or 0x hex)")
	boxesCmd.Flags().Bool("names", false, "Resolve species names")
}

// resolveFileOffset picks the region offset for a file operation: an explicit
// override when given, otherwise the best full-sweep candidate.
func resolveFileOffset(blob []byte, offsetText string, params region.ScanParams) (int, error) {
	if offsetText != "" {
		off, err := region.ParseOffset(offsetText)
		if err != nil {
			return 0, err
		}
		if off >= len(blob) {
			return 0, fmt.Errorf("offset %d past end of %d-byte file: %w",
				off, len(blob), region.ErrOutOfRange)
		}
		return off, nil
	}

	candidates, err := region.Locate(blob, params)
	if err != nil {
		return 0, err
	}
	return candidates[0].Offset, nil
}

// lookupNames resolves the distinct species codes present in the grid. Name
// resolution is best effort; slots whose lookup fails render without one.
func lookupNames(cfg *config.Config, grid *region.Grid) map[uint16]string {
	meta, err := openMetaStore(cfg)
	if err != nil {
		fmt.Printf("Warning: species names unavailable: %v\n", err)
		return nil
	}
	defer meta.Close()

	resolver := species.NewResolver(speciesConfig(cfg), meta)
	names := make(map[uint16]string)
	for _, box := range grid.Boxes {
		for i := range box {
			slot := &box[i]
			if !slot.Present() {
				continue
			}
			code := slot.Record.IdentityCode
			if _, seen := names[code]; seen {
				continue
			}
			name, err := resolver.Lookup(code)
			if err != nil {
				continue
			}
			names[code] = name
		}
	}
	return names
}
