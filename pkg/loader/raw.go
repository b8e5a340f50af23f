package loader

import (
	"fmt"
	"os"
)

// RawLoader loads a flat binary image, handing the whole file to the
// handler at a fixed base address. This is the common case for images
// produced by `objcopy -O binary`.
type RawLoader struct {
	BaseLoader
	baseAddress uint32
}

// NewRawLoader creates a loader that reports every byte relative to
// base.
func NewRawLoader(base uint32) *RawLoader {
	return &RawLoader{baseAddress: base}
}

func (l *RawLoader) Open(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	l.file = file
	return nil
}

func (l *RawLoader) Process() error {
	if l.file == nil {
		return fmt.Errorf("file not open")
	}
	if l.handler == nil {
		return fmt.Errorf("handler not set")
	}

	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	data := make([]byte, info.Size())
	if _, err := l.file.ReadAt(data, 0); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return l.handler(l.baseAddress, data)
}
