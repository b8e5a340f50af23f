package updater

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/deviceloop"
	"github.com/kvatra/blackshield/internal/flash"
	"github.com/kvatra/blackshield/internal/layout"
	"github.com/kvatra/blackshield/internal/session"
)

// loopback connects an Updater directly to a device-side Run() loop
// through in-memory pipes, so these tests exercise the real wire framing
// without any actual serial or TCP transport.
type loopback struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *loopback) Open(string) error  { return nil }
func (l *loopback) Close() error       { return nil }
func (l *loopback) IsOpen() bool       { return true }

func (l *loopback) Write(data []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(data)
}

func (l *loopback) Read(n int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() < n {
		return nil, errors.New("loopback: short read")
	}
	buf := make([]byte, n)
	_, err := l.buf.Read(buf)
	return buf, err
}

// pair wires an Updater's outbound frames to a Session via two
// loopbacks: hostToDevice carries commands, deviceToHost carries
// responses. Each Updater call writes one frame, then drives the device
// loop one frame's worth before reading the response back.
type pair struct {
	hostToDevice *loopback
	deviceToHost *loopback
	sess         *session.Session
}

func newPair() *pair {
	m := flash.NewMem()
	e := crc.NewSoftware()
	return &pair{
		hostToDevice: &loopback{},
		deviceToHost: &loopback{},
		sess:         session.New(m, e, nil),
	}
}

func (p *pair) Open(string) error { return nil }
func (p *pair) Close() error      { return nil }
func (p *pair) IsOpen() bool      { return true }

func (p *pair) Write(data []byte) (int, error) {
	n, err := p.hostToDevice.Write(data)
	if err != nil {
		return n, err
	}
	// pump() always ends in errStop once the device loop has produced a
	// response frame; that is the signal pump() is done, not a failure.
	if err := p.pump(); err != nil && !errors.Is(err, errStop) {
		return n, err
	}
	return n, nil
}

func (p *pair) Read(n int) ([]byte, error) {
	return p.deviceToHost.Read(n)
}

// pump runs one iteration of the device loop's frame handling against
// whatever is queued in hostToDevice, writing the response into
// deviceToHost.
func (p *pair) pump() error {
	link := singleFrameLink{in: p.hostToDevice, out: p.deviceToHost}
	return deviceloop.Run(link, p.sess)
}

// singleFrameLink adapts the two loopbacks to deviceloop.Link for
// exactly one request/response cycle; Run returns errStop right after
// the first write so pump() doesn't block waiting for a second frame.
type singleFrameLink struct {
	in, out *loopback
}

var errStop = errors.New("loopback: one frame done")

func (l singleFrameLink) Read(n int) ([]byte, error) { return l.in.Read(n) }

func (l singleFrameLink) Write(data []byte) (int, error) {
	n, err := l.out.Write(data)
	if err != nil {
		return n, err
	}
	return n, errStop
}

func TestConnectRoundTrip(t *testing.T) {
	p := newPair()
	u := New(p)

	identity, err := u.Connect()
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !bytes.Equal(identity, []byte{0x19, 0x01, 0x01}) {
		t.Errorf("identity = % X, want 19 01 01", identity)
	}
}

func TestUploadAndCommitRoundTrip(t *testing.T) {
	p := newPair()
	u := New(p)

	if _, err := u.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	image := bytes.Repeat([]byte{0xAB}, 300)
	if err := u.UploadAndCommit(image); err != nil {
		t.Fatalf("UploadAndCommit() error = %v", err)
	}

	desc, err := u.FetchInfo()
	if err != nil {
		t.Fatalf("FetchInfo() error = %v", err)
	}
	if desc.LengthBytes != uint32(len(image)) {
		t.Errorf("descriptor length = %d, want %d", desc.LengthBytes, len(image))
	}
	if !desc.Valid() {
		t.Errorf("descriptor not valid after commit: %+v", desc)
	}
}

func TestWriteFirmwareRejectsOversizedChunk(t *testing.T) {
	p := newPair()
	u := New(p)
	if _, err := u.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	err := u.WriteFirmware(make([]byte, 256))
	if err == nil {
		t.Fatal("WriteFirmware() with 256-byte chunk: want error, got nil")
	}
}

func TestEraseFirmwareResetsCursorToAppStart(t *testing.T) {
	p := newPair()
	u := New(p)
	if _, err := u.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := u.WriteFirmware([]byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteFirmware() error = %v", err)
	}
	if err := u.EraseFirmware(); err != nil {
		t.Fatalf("EraseFirmware() error = %v", err)
	}
	if got := p.sess.Cursor(); got != layout.AppStart {
		t.Errorf("cursor after erase = 0x%X, want 0x%X", got, layout.AppStart)
	}
}
