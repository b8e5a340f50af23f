package cmd

import (
	"fmt"

	"github.com/kvatra/blackshield/pkg/connection"
	"github.com/kvatra/blackshield/pkg/updater"
	"github.com/spf13/cobra"
)

// rebootCmd issues Reboot_MCU against a connected device.
var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot a connected device",
	Long: `Connect to a device and issue Reboot_MCU, ending the update session
and triggering a system reset.

Example:
  blctl reboot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReboot()
	},
}

func init() {
	rootCmd.AddCommand(rebootCmd)
}

func runReboot() error {
	if err := validateConnectionFlags(); err != nil {
		return err
	}

	conn := connection.NewConnection(cfg.Port)
	if err := conn.Open(cfg.Port); err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	u := updater.New(conn)
	if _, err := u.Connect(); err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	printInfo("Rebooting device...\n")
	return u.Reboot()
}
