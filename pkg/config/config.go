/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/MouseMan32/PokHo/pkg/region"
)

// Config represents the PokHo configuration
type Config struct {
	Server  Server  `yaml:"server"`
	Data    Data    `yaml:"data"`
	Scan    Scan    `yaml:"scan"`
	Species Species `yaml:"species"`
}

// Server contains API server configuration
type Server struct {
	Port   int    `yaml:"port"`
	Bind   string `yaml:"bind"`
	APIKey string `yaml:"api_key"`
}

// Data contains storage configuration
type Data struct {
	Dir string `yaml:"dir"`
}

// Scan mirrors the region locator parameters
type Scan struct {
	CoarseStride int     `yaml:"coarse_stride"`
	FineStride   int     `yaml:"fine_stride"`
	FineRadius   int     `yaml:"fine_radius"`
	WindowRadius int     `yaml:"window_radius"`
	SampleStride int     `yaml:"sample_stride"`
	BadRunLimit  int     `yaml:"bad_run_limit"`
	MinValid     int     `yaml:"min_valid"`
	MinScore     float64 `yaml:"min_score"`
	RefineCount  int     `yaml:"refine_count"`
	TopN         int     `yaml:"top_n"`
}

// Species contains name resolution configuration
type Species struct {
	Endpoint string `yaml:"endpoint"`
	Offline  bool   `yaml:"offline"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	params := region.DefaultScanParams()
	return &Config{
		Server: Server{
			Port:   8080,
			Bind:   "127.0.0.1",
			APIKey: "auto",
		},
		Data: Data{
			Dir: "./data",
		},
		Scan: Scan{
			CoarseStride: params.CoarseStride,
			FineStride:   params.FineStride,
			FineRadius:   params.FineRadius,
			WindowRadius: params.WindowRadius,
			SampleStride: params.SampleStride,
			BadRunLimit:  params.BadRunLimit,
			MinValid:     params.MinValid,
			MinScore:     params.MinScore,
			RefineCount:  params.RefineCount,
			TopN:         params.TopN,
		},
		Species: Species{
			Endpoint: "https://pokeapi.co/api/v2/pokemon-species",
			Offline:  false,
		},
	}
}

// ScanParams converts the scan section into locator parameters
func (c *Config) ScanParams() region.ScanParams {
	return region.ScanParams{
		CoarseStride: c.Scan.CoarseStride,
		FineStride:   c.Scan.FineStride,
		FineRadius:   c.Scan.FineRadius,
		WindowRadius: c.Scan.WindowRadius,
		SampleStride: c.Scan.SampleStride,
		BadRunLimit:  c.Scan.BadRunLimit,
		MinValid:     c.Scan.MinValid,
		MinScore:     c.Scan.MinScore,
		RefineCount:  c.Scan.RefineCount,
		TopN:         c.Scan.TopN,
	}
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.Data.Dir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./pokho.yaml"
	}

	// For Linux/macOS, use ~/.config/pokho/config.yaml
	configDir := filepath.Join(homeDir, ".config", "pokho")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
