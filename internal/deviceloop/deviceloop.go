// Package deviceloop implements the bootloader's single-threaded main
// loop of spec.md §5: poll the serial link for one frame, validate it,
// dispatch it through an Update Session, and reply. Framing-read logic
// (read the fixed header, then the length-determined remainder) mirrors
// pkg/connection.Bridge's relay loop, adapted here to drive a
// session.Session directly instead of forwarding bytes.
package deviceloop

import (
	"github.com/kvatra/blackshield/internal/codec"
	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/session"
)

// Link is the minimal byte transport the device loop needs: exact-count
// reads and best-effort writes. pkg/connection.Connection satisfies
// this; so does a bare UART wrapper with no Open/Close/IsOpen concept,
// which is all a tinygo build can offer.
type Link interface {
	Read(n int) ([]byte, error)
	Write(data []byte) (int, error)
}

// zero clears the received frame after each handler runs, including
// before a Reboot_MCU-armed reset fires, so no command bytes survive
// into the next iteration.
func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// Run polls link for frames and dispatches them to sess until a
// Reboot_MCU is processed or a read error ends the session (matching
// spec.md §4.4's "terminated only by Disconnect_Device, Reboot_MCU, or
// external reset" — Disconnect_Device just moves state, it does not end
// Run; only Reboot_MCU or a transport failure does).
func Run(link Link, sess *session.Session) error {
	engine := crc.NewSoftware()

	for {
		header, err := link.Read(codec.PrefixLen)
		if err != nil {
			return err
		}
		payloadLen := int(header[4])
		tail, err := link.Read(payloadLen + 4 + 2)
		if err != nil {
			return err
		}

		frame := append(append([]byte{}, header...), tail...)
		f, err := codec.Validate(frame, engine)
		if err != nil {
			// Silent drop, per spec.md §7: malformed packets never NAK.
			continue
		}

		resp, ok := sess.Handle(f)
		zero(frame)
		if !ok {
			continue
		}
		if _, err := link.Write(resp); err != nil {
			return err
		}

		if sess.TakeResetRequest() {
			sess.ApplyReset()
			return nil
		}
	}
}
