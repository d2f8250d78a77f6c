package tap

import (
	"errors"
	"time"
)

var (
	// ErrWouldBlock reports that no frame is queued. It is not fatal; wait and retry.
	ErrWouldBlock = errors.New("tap: read would block")
	// ErrClosed reports use of a device after Close.
	ErrClosed = errors.New("tap: device closed")
	// ErrUnsupported is returned on platforms without TUN/TAP support.
	ErrUnsupported = errors.New("tap: unsupported platform")
)

// gateway is the only place that crosses into the kernel. Each method maps
// errno values onto typed errors so callers never inspect raw syscall results.
type gateway interface {
	// openDevice opens the clone device read-write and non-blocking.
	openDevice(path string) (int, error)
	// bindDevice attaches fd to a TAP interface without packet information
	// headers and returns the name the kernel reports back.
	bindDevice(fd int, name string) (string, error)
	// read performs one non-blocking read, returning ErrWouldBlock when empty.
	read(fd int, buf []byte) (int, error)
	// waitReadable blocks until fd is readable or timeout elapses.
	// A negative timeout blocks indefinitely.
	waitReadable(fd int, timeout time.Duration) error
	closeDevice(fd int) error
}
