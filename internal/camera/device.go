package camera

import (
	"context"
	"errors"
)

// ErrDeviceClosed is returned by ReadFrame once the device has been
// released. The frame loop treats it as end of stream, not as a fault to
// retry.
var ErrDeviceClosed = errors.New("capture device closed")

// Device is a frame source at the gate. Open acquires the underlying
// resource, ReadFrame blocks until the next complete JPEG frame, Close
// releases the resource and makes subsequent reads fail. Open and Close
// are idempotent.
type Device interface {
	Open(ctx context.Context) error
	ReadFrame() ([]byte, error)
	Close() error
}
