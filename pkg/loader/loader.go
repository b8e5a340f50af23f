// Package loader provides image-file loaders for blctl's update command:
// Intel HEX (the common ARM toolchain output format) and raw binary.
package loader

import "os"

// WriteHandler is a callback function that receives parsed address/data
// pairs. blctl's update command uses it to assemble one contiguous image,
// offset relative to APP_START, which it then uploads with
// pkg/updater.Updater's UploadAndCommit.
type WriteHandler func(address uint32, data []byte) error

// Loader is one image-file format. Open, set a handler, Process; the
// handler sees each contiguous block with the flash address it belongs
// at.
type Loader interface {
	Open(filename string) error
	Close() error
	SetHandler(handler WriteHandler)
	// Process parses the whole file, invoking the handler per block.
	Process() error
}

// BaseLoader carries the open file and handler both formats share.
type BaseLoader struct {
	file    *os.File
	handler WriteHandler
}

func (b *BaseLoader) SetHandler(handler WriteHandler) {
	b.handler = handler
}

func (b *BaseLoader) Close() error {
	if b.file != nil {
		return b.file.Close()
	}
	return nil
}
