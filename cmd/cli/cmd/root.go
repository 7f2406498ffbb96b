// Package cmd provides the CLI commands for sitemate.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sitemate/internal/app"
	"sitemate/internal/config"
	"sitemate/internal/logging"
)

// Version is the CLI version
const Version = "1.0.0"

var (
	cfgFile  string
	envFile  string
	verbose  bool
	location string
	soil     string
	format   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitemate",
	Short: "Estimate residential construction costs in Nigeria",
	Long: `sitemate sizes foundations, converts engineering quantities into
market units and prices a bill of quantities for sites in Lekki, Ibadan
and Abuja.

Examples:
  sitemate feasibility --building "3-Bedroom Bungalow" --land 600
  sitemate foundation strip --load 150 --sbc 150
  sitemate price -m Cement=120 -m "Sharp Sand=40" --location "Ibadan, Oyo"
  sitemate estimate "Budget for a 3 bedroom bungalow on swampy land"
  sitemate serve`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sitemate/config.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&location, "location", "l", "", "site location (default from config)")
	rootCmd.PersistentFlags().StringVar(&soil, "soil", "", "site soil: Firm/Sandy, Clay or Swampy (default from config)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "cli", "output format (cli, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", envFile, err)
	}

	path := cfgFile
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sitemate", "config.json")
}

// newApp wires the components named by the loaded configuration
func newApp() (*app.App, error) {
	return app.New(config.Get(), logging.Logger)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sitemate version %s\n", Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration without secrets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeJSON(cmd.OutOrStdout(), config.Get())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = defaultConfigPath()
		}
		if err := config.Get().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}
