package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MouseMan32/PokHo/pkg/config"
	"github.com/MouseMan32/PokHo/pkg/region"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file> <box> <slot>",
	Short: "Export one slot's raw record bytes",
	Long: `Export the raw record bytes at one grid slot into a file. Box and
slot indexes are zero-based.

Examples:
  pokho export emerald.sav 0 5
  pokho export emerald.sav 2 11 --offset 0x22600 -o starter.bin`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := cmd.Context().Value("config").(*config.Config)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		box, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error: box must be a number\n")
			os.Exit(1)
		}
		slot, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Printf("Error: slot must be a number\n")
			os.Exit(1)
		}

		blob, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			os.Exit(1)
		}

		offsetText, _ := cmd.Flags().GetString("offset")
		off, err := resolveFileOffset(blob, offsetText, cfg.ScanParams())
		if err != nil {
			fmt.Printf("Error resolving region offset: %v\n", err)
			os.Exit(1)
		}

		raw, err := region.ExportSlot(blob, off, box, slot)
		if errors.Is(err, region.ErrEmptySlot) {
			fmt.Printf("Error: slot is empty\n")
			os.Exit(1)
		}
		if err != nil {
			fmt.Printf("Error exporting slot: %v\n", err)
			os.Exit(1)
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = defaultExportName(args[0], box, slot)
		}
		if err := os.WriteFile(out, raw, 0644); err != nil {
			fmt.Printf("Error writing output file: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Exported box %d slot %d to %s (%d bytes)\n", box, slot, out, len(raw))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("offset", "", "Region offset override (decimal or 0x hex)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: <save>-box<b>-slot<s>.bin)")
}

// defaultExportName derives the output filename from the save name.
func defaultExportName(file string, box, slot int) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return fmt.Sprintf("%s-box%d-slot%d.bin", base, box, slot)
}
