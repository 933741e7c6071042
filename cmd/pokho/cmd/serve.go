/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MouseMan32/PokHo/pkg/api"
	"github.com/MouseMan32/PokHo/pkg/config"
	"github.com/MouseMan32/PokHo/pkg/saves"
	"github.com/MouseMan32/PokHo/pkg/species"
	"github.com/MouseMan32/PokHo/pkg/storage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the PokHo REST API server. Uploaded saves live in the
configured data directory; scans, box grids and slot exports are served
over REST plus a WebSocket event feed.

Examples:
  pokho serve
  pokho serve --port 9000 --bind 0.0.0.0`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := cmd.Context().Value("config").(*config.Config)
		if !ok {
			cmd.Println("Error: config not found in context")
			return
		}

		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		apiKey, _ := cmd.Flags().GetString("api-key")

		if port != 0 {
			cfg.Server.Port = port
		}
		if bind != "" {
			cfg.Server.Bind = bind
		}
		if apiKey != "" {
			cfg.Server.APIKey = apiKey
		}

		// "auto" is the placeholder an unbootstrapped config carries; the
		// server still starts, with a throwaway key for this run.
		if cfg.Server.APIKey == "" || cfg.Server.APIKey == "auto" {
			generated, err := config.GenerateSecureKey(32)
			if err != nil {
				cmd.Printf("Error generating API key: %v\n", err)
				os.Exit(1)
			}
			cfg.Server.APIKey = generated
			cmd.Printf("Generated ephemeral API key: %s\n", generated)
			cmd.Printf("Run 'pokho init' to persist one in the config file.\n")
		}

		blobs, err := storage.NewBlobStore(filepath.Join(cfg.Data.Dir, "blobs"))
		if err != nil {
			cmd.Printf("Error opening blob store: %v\n", err)
			os.Exit(1)
		}
		defer blobs.Close()

		meta, err := openMetaStore(cfg)
		if err != nil {
			cmd.Printf("Error opening metadata store: %v\n", err)
			os.Exit(1)
		}
		defer meta.Close()

		svc := saves.NewService(blobs, meta, cfg.ScanParams())
		resolver := species.NewResolver(speciesConfig(cfg), meta)

		serverConfig := api.ServerConfig{
			Port:   cfg.Server.Port,
			Bind:   cfg.Server.Bind,
			APIKey: cfg.Server.APIKey,
		}

		if err := api.StartServer(svc, resolver, serverConfig); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}
