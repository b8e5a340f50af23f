package cmd

import (
	"fmt"

	"github.com/kvatra/blackshield/pkg/connection"
	"github.com/kvatra/blackshield/pkg/updater"
	"github.com/kvatra/blackshield/pkg/util"
	"github.com/spf13/cobra"
)

// eraseCmd erases the installed application and its descriptor without
// installing a replacement, leaving the device in update mode on next
// reset.
var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase the installed application and its descriptor",
	Long: `Erase the application and metadata sectors on a connected device.

⚠️  WARNING: This is a destructive operation that cannot be undone.
After an erase, the device boots into update mode until a new image
is written and committed.

Example:
  blctl erase`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runErase()
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)
}

func runErase() error {
	if err := validateConnectionFlags(); err != nil {
		return err
	}

	if !util.ConfirmDanger("You are about to erase the installed application") {
		printInfo("Operation cancelled.\n")
		return nil
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

	printInfo("Erasing application and metadata sectors...\n")
	if err := u.EraseFirmware(); err != nil {
		return fmt.Errorf("erase failed: %w", err)
	}

	printInfo("Erase complete.\n")
	return nil
}
