// Package cmd implements all CLI commands for blctl.
package cmd

import (
	"fmt"

	"github.com/kvatra/blackshield/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Global configuration instance
	cfg *config.Config

	// Global flags
	portFlag  string
	quietFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blctl",
	Short: "blctl - field-update a blackshield bootloader over its serial link",
	Long: `blctl drives the blackshield update protocol: connecting to a device
running the bootloader, uploading a firmware image, committing its
descriptor, and rebooting into the new application.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if portFlag != "" {
			cfg.Port = portFlag
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&portFlag, "port", "", "Serial port or TCP address (e.g., /dev/ttyUSB0, 192.168.1.114:2560)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress informational output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// validateConnectionFlags checks that a port has been configured.
func validateConnectionFlags() error {
	if cfg.Port == "" && portFlag == "" {
		return fmt.Errorf("no port specified (use --port flag or set in blackshield.ini)")
	}
	return nil
}

// printInfo prints output that respects --quiet.
func printInfo(format string, args ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, args...)
	}
}
