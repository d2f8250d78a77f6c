//go:build linux

package tap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func nonBlockingPipe(t *testing.T) (r, w int) {
	t.Helper()
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})
	return p[0], p[1]
}

func TestWaitReadableZeroTimeoutReturnsPromptly(t *testing.T) {
	r, _ := nonBlockingPipe(t)
	gw := unixGateway{}

	start := time.Now()
	require.NoError(t, gw.waitReadable(r, 0))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	_, err := gw.read(r, make([]byte, 16))
	assert.ErrorIs(t, err, ErrWouldBlock)
}

func TestWaitReadableHonoursTimeout(t *testing.T) {
	r, _ := nonBlockingPipe(t)
	gw := unixGateway{}

	start := time.Now()
	require.NoError(t, gw.waitReadable(r, 50*time.Millisecond))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestWaitReadableThenRead(t *testing.T) {
	r, w := nonBlockingPipe(t)
	gw := unixGateway{}

	_, err := unix.Write(w, []byte("frame"))
	require.NoError(t, err)

	require.NoError(t, gw.waitReadable(r, NoTimeout))
	buf := make([]byte, 16)
	n, err := gw.read(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "frame", string(buf[:n]))
}

func TestWaitReadableBadDescriptor(t *testing.T) {
	gw := unixGateway{}
	assert.Error(t, gw.waitReadable(-1, 0))
	assert.Error(t, gw.waitReadable(fdSetCapacity, 0))
}

func TestOpenDeviceMissingPath(t *testing.T) {
	gw := unixGateway{}
	_, err := gw.openDevice(filepath.Join(t.TempDir(), "no-such-device"))
	var pathErr *os.PathError
	require.True(t, errors.As(err, &pathErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBindDeviceRejectsOversizedName(t *testing.T) {
	gw := unixGateway{}
	_, err := gw.bindDevice(-1, "abcdefghijklmnopqrstuvwxyz")
	assert.ErrorIs(t, err, unix.EINVAL)
}

func TestCloseDevice(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	defer unix.Close(p[1])

	gw := unixGateway{}
	require.NoError(t, gw.closeDevice(p[0]))
	assert.Error(t, gw.closeDevice(p[0]))
}
