package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MouseMan32/PokHo/pkg/config"
	"github.com/MouseMan32/PokHo/pkg/species"
)

// speciesCmd represents the species command
var speciesCmd = &cobra.Command{
	Use:   "species <code|query>",
	Short: "Resolve a species code or search cached names",
	Long: `Resolve a numeric species code to its display name, or fuzzy-search
the cached names when the argument is not a number.

Examples:
  pokho species 25
  pokho species pikchu`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := cmd.Context().Value("config").(*config.Config)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		limit, _ := cmd.Flags().GetInt("limit")

		meta, err := openMetaStore(cfg)
		if err != nil {
			fmt.Printf("Error opening metadata store: %v\n", err)
			os.Exit(1)
		}
		defer meta.Close()

		resolver := species.NewResolver(speciesConfig(cfg), meta)

		if code, err := strconv.ParseUint(args[0], 10, 16); err == nil {
			name, err := resolver.Lookup(uint16(code))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("#%03d %s\n", code, name)
			return
		}

		matches, err := resolver.Search(args[0], limit)
		if err != nil {
			fmt.Printf("Error searching species: %v\n", err)
			os.Exit(1)
		}
		if len(matches) == 0 {
			fmt.Printf("No matches for %q\n", args[0])
			return
		}
		for _, m := range matches {
			fmt.Printf("#%03d %s (distance %d)\n", m.Code, m.Name, m.Distance)
		}
	},
}

func init() {
	rootCmd.AddCommand(speciesCmd)
	speciesCmd.Flags().Int("limit", 5, "Maximum search results")
}
