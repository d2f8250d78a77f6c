//go:build linux

package tap

import (
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// fdSetCapacity is the highest descriptor select(2) can watch, plus one.
var fdSetCapacity = len(unix.FdSet{}.Bits) * int(unsafe.Sizeof(unix.FdSet{}.Bits[0])) * 8

type unixGateway struct{}

func newSysGateway() gateway {
	return unixGateway{}
}

func (unixGateway) openDevice(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return fd, nil
}

func (unixGateway) bindDevice(fd int, name string) (string, error) {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return "", os.NewSyscallError("ifreq", err)
	}
	// Flags occupy the first 16 bits of the ifreq union.
	ifr.SetUint16(unix.IFF_TAP | unix.IFF_NO_PI)
	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr); err != nil {
		return "", os.NewSyscallError("ioctl TUNSETIFF", err)
	}
	return ifr.Name(), nil
}

func (unixGateway) read(fd int, buf []byte) (int, error) {
	for {
		n, err := unix.Read(fd, buf)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, ErrWouldBlock
		default:
			return 0, os.NewSyscallError("read", err)
		}
	}
}

func (unixGateway) waitReadable(fd int, timeout time.Duration) error {
	if fd < 0 || fd >= fdSetCapacity {
		return os.NewSyscallError("select", unix.EBADF)
	}

	var tv *unix.Timeval
	if timeout >= 0 {
		t := unix.NsecToTimeval(timeout.Nanoseconds())
		tv = &t
	}

	for {
		var rset unix.FdSet
		rset.Zero()
		rset.Set(fd)
		// Linux select writes the remaining time back into tv, so a retry
		// after EINTR keeps the same deadline.
		_, err := unix.Select(fd+1, &rset, nil, nil, tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return os.NewSyscallError("select", err)
		}
		return nil
	}
}

func (unixGateway) closeDevice(fd int) error {
	if err := unix.Close(fd); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}
