/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MouseMan32/PokHo/pkg/config"
	"github.com/MouseMan32/PokHo/pkg/species"
	"github.com/MouseMan32/PokHo/pkg/store"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pokho",
	Short: "PokHo - creature save decode and locate engine",
	Long: `PokHo decodes the encrypted creature records inside raw save files,
locates the box region without a fixed offset and renders the result
as a 31x30 grid. Saves can also be uploaded to a local store and
served over a REST/WebSocket API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")

		cfg, err := resolveConfig(configPath, dataDir)
		if err != nil {
			return err
		}

		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), "config", cfg))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory (overrides config)")
}

// resolveConfig loads the effective configuration. An explicit path must
// exist; the default path is optional and falls back to built-in defaults.
// A nonempty dataDir overrides whatever the config says.
func resolveConfig(configPath, dataDir string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case configPath != "":
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	case config.ConfigExists(config.GetDefaultConfigPath()):
		cfg, err = config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	return cfg, nil
}

// openMetaStore opens the metadata store under the configured data directory.
// Save metadata and the species name cache both live here.
func openMetaStore(cfg *config.Config) (*store.MetaStore, error) {
	meta, err := store.NewMetaStore(store.MetaStoreConfig{
		DataDir: filepath.Join(cfg.Data.Dir, "meta"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata store: %w", err)
	}

	recovery, err := meta.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	if recovery.FramesTruncated > 0 {
		fmt.Printf("Recovered from corruption: %d frames truncated\n", recovery.FramesTruncated)
	}
	return meta, nil
}

// speciesConfig maps the config file section onto resolver settings.
func speciesConfig(cfg *config.Config) species.Config {
	return species.Config{
		Endpoint: cfg.Species.Endpoint,
		Offline:  cfg.Species.Offline,
	}
}
