// Package tap manages a Linux TAP interface: binding it through the
// universal TUN/TAP clone device, non-blocking frame reads and a
// readiness wait with timeout.
package tap

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"firestige.xyz/tapwatch/internal/core"
	"firestige.xyz/tapwatch/internal/log"
)

const (
	// CloneDevicePath is the universal TUN/TAP control device.
	CloneDevicePath = "/dev/net/tun"

	// MaxNameLen is IFNAMSIZ minus the trailing NUL.
	MaxNameLen = 15

	DefaultMTU      = 1500
	DefaultHeadroom = 100

	// NoTimeout makes Wait block until the device is readable.
	NoTimeout time.Duration = -1
)

// Options sizes the receive buffer.
type Options struct {
	MTU      int
	Headroom int
}

func (o Options) withDefaults() Options {
	if o.MTU <= 0 {
		o.MTU = DefaultMTU
	}
	if o.Headroom < 0 {
		o.Headroom = 0
	}
	if o.Headroom == 0 {
		o.Headroom = DefaultHeadroom
	}
	return o
}

// BufferSize is the per-read buffer length: MTU plus headroom.
func (o Options) BufferSize() int {
	o = o.withDefaults()
	return o.MTU + o.Headroom
}

// ValidateName rejects names the kernel would truncate. An empty name is
// allowed and lets the kernel choose tapN.
func ValidateName(name string) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %q exceeds %d bytes", core.ErrInvalidDeviceName, name, MaxNameLen)
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c == 0 || c == '/' || c == ' ' {
			return fmt.Errorf("%w: %q contains %q", core.ErrInvalidDeviceName, name, c)
		}
	}
	return nil
}

// Device owns exactly one kernel handle bound to a TAP interface.
// It is meant for a single consumer goroutine.
type Device struct {
	gw      gateway
	fd      int
	name    string
	bufSize int

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open binds a TAP interface called name and returns its device.
// The handle is non-blocking; use Wait before Receive.
func Open(name string, opts Options) (*Device, error) {
	return open(newSysGateway(), name, opts)
}

func open(gw gateway, name string, opts Options) (*Device, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	fd, err := gw.openDevice(CloneDevicePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDeviceOpenFailed, err)
	}

	bound, err := gw.bindDevice(fd, name)
	if err != nil {
		if cerr := gw.closeDevice(fd); cerr != nil {
			log.GetLogger().WithError(cerr).Warn("close after failed bind")
		}
		return nil, fmt.Errorf("%w: %q: %w", core.ErrDeviceBindFailed, name, err)
	}

	d := &Device{
		gw:      gw,
		fd:      fd,
		name:    bound,
		bufSize: opts.BufferSize(),
	}
	log.GetLogger().WithFields(map[string]interface{}{
		"device": d.name,
		"buffer": d.bufSize,
	}).Info("tap device bound")
	return d, nil
}

// Name is the interface name reported by the kernel.
func (d *Device) Name() string {
	return d.name
}

// BufferSize is the capacity of each receive buffer.
func (d *Device) BufferSize() int {
	return d.bufSize
}

// Receive performs one non-blocking read and returns exactly the bytes read.
// The returned slice is owned by the caller. ErrWouldBlock means no frame was queued.
func (d *Device) Receive() ([]byte, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	buf := make([]byte, d.bufSize)
	n, err := d.gw.read(d.fd, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n:n], nil
}

// Wait blocks until the device is readable or timeout elapses; NoTimeout
// waits forever. Both outcomes return nil, so a following Receive may still
// report ErrWouldBlock.
func (d *Device) Wait(timeout time.Duration) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if timeout < 0 {
		timeout = NoTimeout
	}
	return d.gw.waitReadable(d.fd, timeout)
}

// Close releases the kernel handle. Later calls return the first result.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		d.closeErr = d.gw.closeDevice(d.fd)
		log.GetLogger().WithField("device", d.name).Info("tap device closed")
	})
	return d.closeErr
}
