package resource

import (
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FileDevice opens a device node (e.g. /dev/video0) as the exclusive
// resource. Opening an already-open or missing node fails, which surfaces to
// the caller as a failed acquisition.
type FileDevice struct {
	Path string
}

func (d FileDevice) Open() (Handle, error) {
	file, err := os.OpenFile(d.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "[FileDevice.Open] os.OpenFile")
	}
	return &fileHandle{id: uuid.New().String(), file: file}, nil
}

type fileHandle struct {
	id   string
	file *os.File
}

func (h *fileHandle) ID() string {
	return h.id
}

func (h *fileHandle) Close() error {
	return h.file.Close()
}
