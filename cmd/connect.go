package cmd

import (
	"fmt"

	"github.com/kvatra/blackshield/pkg/connection"
	"github.com/kvatra/blackshield/pkg/updater"
	"github.com/spf13/cobra"
)

// connectCmd sanity-checks that a device answers Connect_Device.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a device and print its identity",
	Long: `Send Connect_Device and print the device's identity payload, then
disconnect. Useful for confirming wiring and --port before an update.

Example:
  blctl connect`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnect()
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect() error {
	if err := validateConnectionFlags(); err != nil {
		return err
	}

	conn := connection.NewConnection(cfg.Port)
	if err := conn.Open(cfg.Port); err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	u := updater.New(conn)
	identity, err := u.Connect()
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	printInfo("Connected. Identity: % X\n", identity)

	if err := u.Disconnect(); err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}
	return nil
}
