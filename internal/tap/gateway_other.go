//go:build !linux

package tap

import "time"

type unsupportedGateway struct{}

func newSysGateway() gateway {
	return unsupportedGateway{}
}

func (unsupportedGateway) openDevice(string) (int, error)         { return -1, ErrUnsupported }
func (unsupportedGateway) bindDevice(int, string) (string, error) { return "", ErrUnsupported }
func (unsupportedGateway) read(int, []byte) (int, error)          { return 0, ErrUnsupported }
func (unsupportedGateway) waitReadable(int, time.Duration) error  { return ErrUnsupported }
func (unsupportedGateway) closeDevice(int) error                  { return ErrUnsupported }
