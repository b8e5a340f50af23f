package cmd

import (
	"fmt"

	"github.com/kvatra/blackshield/pkg/connection"
	"github.com/kvatra/blackshield/pkg/updater"
	"github.com/spf13/cobra"
)

// infoCmd fetches the installed image's descriptor.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the installed image's length and CRC32",
	Long: `Connect to a device and print the currently committed image descriptor:
its length in bytes and its CRC32 checksum.

Example:
  blctl info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo() error {
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

	d, err := u.FetchInfo()
	if err != nil {
		return fmt.Errorf("fetch info failed: %w", err)
	}

	if !d.Valid() {
		printInfo("No valid image installed (length=0x%08X).\n", d.LengthBytes)
		return nil
	}
	printInfo("Installed image: %d bytes, CRC32 0x%08X\n", d.LengthBytes, d.ExpectedCRC)
	return nil
}
