package dispatch

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tapwatch/internal/core/decoder"
	"firestige.xyz/tapwatch/internal/filter"
	"firestige.xyz/tapwatch/internal/tap"
)

var arpRequest = []byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
	0x08, 0x06,
	0x00, 0x01, 0x08, 0x00, 0x06, 0x04, 0x00, 0x01,
	0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x0A, 0x00, 0x00, 0x05,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x00, 0x01,
}

func ipv4Frame() []byte {
	f := make([]byte, 60)
	f[12], f[13] = 0x08, 0x00
	return f
}

// recvResult is one scripted Receive outcome.
type recvResult struct {
	frame []byte
	err   error
}

// scriptedSource replays batches: each Wait releases the next batch, and
// Receive returns its frames followed by ErrWouldBlock.
type scriptedSource struct {
	mu      sync.Mutex
	batches [][]recvResult
	current []recvResult
	waits   []time.Duration
	waitErr error
	onDrain func()
}

func (s *scriptedSource) Name() string { return "tap-test" }

func (s *scriptedSource) Wait(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, timeout)
	if s.waitErr != nil {
		return s.waitErr
	}
	if len(s.batches) > 0 {
		s.current = s.batches[0]
		s.batches = s.batches[1:]
	}
	return nil
}

func (s *scriptedSource) Receive() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.current) == 0 {
		if len(s.batches) == 0 && s.onDrain != nil {
			s.onDrain()
			s.onDrain = nil
		}
		return nil, tap.ErrWouldBlock
	}
	r := s.current[0]
	s.current = s.current[1:]
	return r.frame, r.err
}

type captureReporter struct {
	packets []decoder.Packet
}

func (c *captureReporter) Report(_ time.Time, pkt decoder.Packet) {
	c.packets = append(c.packets, pkt)
}

type captureRecorder struct {
	frames [][]byte
	err    error
}

func (c *captureRecorder) WriteFrame(_ time.Time, frame []byte) error {
	c.frames = append(c.frames, frame)
	return c.err
}

func TestRunDecodesFramesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{
		batches: [][]recvResult{
			{{frame: arpRequest}},
			{},
			{{frame: ipv4Frame()}, {frame: arpRequest}},
		},
		onDrain: cancel,
	}
	rep := &captureReporter{}
	loop := New(src.Name(), Options{WaitTimeout: 10 * time.Millisecond, Reporter: rep})

	require.NoError(t, loop.Run(ctx, src))

	require.Len(t, rep.packets, 3)
	assert.Equal(t, decoder.EtherTypeARP, rep.packets[0].EtherType)
	assert.Equal(t, decoder.EtherTypeIPv4, rep.packets[1].EtherType)
	require.NotNil(t, rep.packets[2].ARP)
	assert.Equal(t, "10.0.0.1", rep.packets[2].ARP.DestinationIP.String())

	stats := loop.Stats()
	assert.Equal(t, uint64(3), stats.Received)
	assert.Equal(t, uint64(2), stats.ARP)
	assert.GreaterOrEqual(t, stats.WouldBlock, uint64(3))
	for _, w := range src.waits {
		assert.Equal(t, 10*time.Millisecond, w)
	}
}

func TestRunReturnsWaitError(t *testing.T) {
	waitErr := errors.New("select: bad file descriptor")
	src := &scriptedSource{waitErr: waitErr}
	loop := New(src.Name(), Options{Reporter: &captureReporter{}})

	err := loop.Run(context.Background(), src)
	assert.ErrorIs(t, err, waitErr)
}

func TestRunReturnsReceiveError(t *testing.T) {
	readErr := errors.New("read: input/output error")
	src := &scriptedSource{batches: [][]recvResult{{{err: readErr}}}}
	loop := New(src.Name(), Options{Reporter: &captureReporter{}})

	err := loop.Run(context.Background(), src)
	assert.ErrorIs(t, err, readErr)
}

func TestRunStopsImmediatelyWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{}
	loop := New(src.Name(), Options{})
	require.NoError(t, loop.Run(ctx, src))
	assert.Empty(t, src.waits)
}

func TestHandleDropsRuntFrames(t *testing.T) {
	rep := &captureReporter{}
	rec := &captureRecorder{}
	loop := New("tap-runt", Options{Reporter: rep, Recorder: rec})

	assert.NotPanics(t, func() {
		loop.Handle(time.Now(), make([]byte, decoder.EthernetHeaderLen-1))
		loop.Handle(time.Now(), nil)
	})
	assert.Empty(t, rep.packets)
	assert.Len(t, rec.frames, 2)
	assert.Equal(t, uint64(2), loop.Stats().Runt)
}

func TestHandleCountsTruncatedARPAsDecodeError(t *testing.T) {
	rep := &captureReporter{}
	loop := New("tap-trunc", Options{Reporter: rep})

	loop.Handle(time.Now(), arpRequest[:30])
	assert.Empty(t, rep.packets)
	assert.Equal(t, uint64(1), loop.Stats().DecodeErrors)
}

func TestHandleAppliesFilter(t *testing.T) {
	f, err := filter.New(filter.ARP, nil)
	require.NoError(t, err)
	rep := &captureReporter{}
	rec := &captureRecorder{}
	loop := New("tap-filter", Options{Reporter: rep, Filter: f, Recorder: rec})

	loop.Handle(time.Now(), ipv4Frame())
	loop.Handle(time.Now(), arpRequest)

	require.Len(t, rep.packets, 1)
	assert.Equal(t, decoder.EtherTypeARP, rep.packets[0].EtherType)
	assert.Equal(t, uint64(1), loop.Stats().Filtered)
	assert.Len(t, rec.frames, 2, "recording happens before filtering")
}

func TestHandleRecorderErrorDoesNotStopDecoding(t *testing.T) {
	rep := &captureReporter{}
	rec := &captureRecorder{err: errors.New("disk full")}
	loop := New("tap-rec", Options{Reporter: rep, Recorder: rec})

	loop.Handle(time.Now(), arpRequest)
	assert.Len(t, rep.packets, 1)
	assert.Equal(t, uint64(1), loop.Stats().RecordErrors)
}

type sliceReader struct {
	frames [][]byte
	err    error
}

func (r *sliceReader) ReadFrame() ([]byte, time.Time, error) {
	if len(r.frames) == 0 {
		if r.err != nil {
			return nil, time.Time{}, r.err
		}
		return nil, time.Time{}, io.EOF
	}
	f := r.frames[0]
	r.frames = r.frames[1:]
	return f, time.Unix(1700000000, 0), nil
}

func TestReplay(t *testing.T) {
	rep := &captureReporter{}
	loop := New("replay", Options{Reporter: rep})

	err := loop.Replay(context.Background(), &sliceReader{frames: [][]byte{arpRequest, ipv4Frame(), {0x01}}})
	require.NoError(t, err)
	assert.Len(t, rep.packets, 2)
	assert.Equal(t, uint64(3), loop.Stats().Received)
	assert.Equal(t, uint64(1), loop.Stats().Runt)
}

func TestReplayReaderError(t *testing.T) {
	readErr := errors.New("corrupt record")
	loop := New("replay", Options{Reporter: &captureReporter{}})

	err := loop.Replay(context.Background(), &sliceReader{err: readErr})
	assert.ErrorIs(t, err, readErr)
}

func TestLogReporterDoesNotPanic(t *testing.T) {
	rep := NewLogReporter("tap-log", true)
	for _, f := range [][]byte{arpRequest, ipv4Frame(), make([]byte, 60)} {
		pkt, err := decoder.Decode(f)
		require.NoError(t, err)
		assert.NotPanics(t, func() { rep.Report(time.Now(), pkt) })
	}
}
