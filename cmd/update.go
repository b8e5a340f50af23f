package cmd

import (
	"fmt"

	"github.com/kvatra/blackshield/internal/layout"
	"github.com/kvatra/blackshield/pkg/connection"
	"github.com/kvatra/blackshield/pkg/loader"
	"github.com/kvatra/blackshield/pkg/updater"
	"github.com/kvatra/blackshield/pkg/util"
	"github.com/spf13/cobra"
)

var updateFormat string

// updateCmd represents the update command: connect, erase, upload, commit,
// reboot, in one shot.
var updateCmd = &cobra.Command{
	Use:   "update <imagefile>",
	Short: "Upload a firmware image and reboot into it",
	Long: `Upload a firmware image to a connected device, commit its descriptor,
and reboot into the new application.

⚠️  WARNING: This erases the currently installed application before
writing the new one.

Example:
  blctl update firmware.bin
  blctl update firmware.hex --format ihex`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateFormat, "format", "bin", "Image file format: bin or ihex")
}

// loadImage reads filename into a single contiguous byte slice relative
// to APP_START, using the loader matching --format.
func loadImage(filename string) ([]byte, error) {
	var image []byte
	handler := func(address uint32, data []byte) error {
		offset := int(address - layout.AppStart)
		if offset < 0 {
			return fmt.Errorf("record address 0x%X is before APP_START", address)
		}
		if need := offset + len(data); need > len(image) {
			grown := make([]byte, need)
			copy(grown, image)
			image = grown
		}
		copy(image[offset:], data)
		return nil
	}

	var l loader.Loader
	switch updateFormat {
	case "bin":
		l = loader.NewRawLoader(layout.AppStart)
	case "ihex":
		l = loader.NewIntelHexLoader()
	default:
		return nil, fmt.Errorf("unsupported format %q (want bin or ihex)", updateFormat)
	}

	if err := l.Open(filename); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer l.Close()

	l.SetHandler(handler)
	if err := l.Process(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return image, nil
}

func runUpdate(filename string) error {
	if err := validateConnectionFlags(); err != nil {
		return err
	}

	image, err := loadImage(filename)
	if err != nil {
		return err
	}
	if uint32(len(image)) > layout.AppMaxSize {
		return fmt.Errorf("image is %d bytes, exceeds APP_MAX_SIZE %d", len(image), layout.AppMaxSize)
	}

	printInfo("About to upload %d bytes and reboot the device.\n", len(image))
	if !util.ConfirmDanger("This replaces the currently installed application") {
		printInfo("Operation cancelled.\n")
		return nil
	}

	conn := connection.NewConnection(cfg.Port)
	if err := conn.Open(cfg.Port); err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	u := updater.New(conn)

	printInfo("Connecting...\n")
	if _, err := u.Connect(); err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	printInfo("Erasing and uploading %d bytes...\n", len(image))
	if err := u.UploadAndCommit(image); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	printInfo("Rebooting device...\n")
	if err := u.Reboot(); err != nil {
		return fmt.Errorf("reboot failed: %w", err)
	}

	printInfo("Update complete.\n")
	return nil
}
