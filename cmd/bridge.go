package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kvatra/blackshield/pkg/connection"
	"github.com/spf13/cobra"
)

// bridgeCmd represents the bridge command
var bridgeCmd = &cobra.Command{
	Use:   "bridge <host:port>",
	Short: "Start a TCP-to-serial relay server",
	Long: `Start a TCP server that relays update protocol frames between TCP
clients and the serial port.

This is useful for:
- Remote development
- macOS systems (driver compatibility)
- Network-based tooling

Example:
  blctl bridge localhost:2560
  blctl bridge 0.0.0.0:2560  # Listen on all interfaces`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return startBridge(args[0])
	},
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
}

// startBridge starts the TCP bridge server
func startBridge(hostPort string) error {
	if err := validateConnectionFlags(); err != nil {
		return err
	}

	parts := strings.Split(hostPort, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid host:port format (expected HOST:PORT)")
	}

	host := parts[0]
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	printInfo("Starting TCP bridge on %s:%d -> %s\n", host, port, cfg.Port)
	printInfo("Serial settings: %d baud, %d second timeout\n", cfg.DataRate, cfg.Timeout)

	bridge := connection.NewBridge(host, port, cfg.Port, cfg.DataRate, cfg.Timeout)
	return bridge.Listen()
}
