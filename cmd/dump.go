package cmd

import (
	"fmt"
	"os"

	"github.com/kvatra/blackshield/internal/layout"
	"github.com/kvatra/blackshield/pkg/connection"
	"github.com/kvatra/blackshield/pkg/updater"
	"github.com/kvatra/blackshield/pkg/util"
	"github.com/spf13/cobra"
)

// dumpCmd reads back the installed application (Read_Firmware returns a
// fixed 255-byte window starting at the cursor) and displays it.
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read and display the installed application's first bytes",
	Long: `Connect to a device and hex-dump the first 255 bytes of the installed
application, starting at APP_START.

Example:
  blctl dump`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump()
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump() error {
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

	data, err := u.ReadFirmware()
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	util.HexDump(os.Stdout, data, layout.AppStart)
	return nil
}
