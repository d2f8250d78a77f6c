// Package dispatch drives the receive path: wait for readiness, read frames
// until the device would block, then filter, record, decode and report each one.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"firestige.xyz/tapwatch/internal/core/decoder"
	"firestige.xyz/tapwatch/internal/filter"
	"firestige.xyz/tapwatch/internal/log"
	"firestige.xyz/tapwatch/internal/metrics"
	"firestige.xyz/tapwatch/internal/tap"
)

// Source is the device side of the loop; *tap.Device implements it.
type Source interface {
	Name() string
	Wait(timeout time.Duration) error
	Receive() ([]byte, error)
}

// FrameReader yields recorded frames until io.EOF.
type FrameReader interface {
	ReadFrame() ([]byte, time.Time, error)
}

// Recorder persists raw frames, e.g. *pcapfile.Writer.
type Recorder interface {
	WriteFrame(ts time.Time, frame []byte) error
}

// Reporter receives every successfully decoded frame.
type Reporter interface {
	Report(ts time.Time, pkt decoder.Packet)
}

type Options struct {
	// WaitTimeout bounds each readiness wait; cancellation is noticed between waits.
	WaitTimeout time.Duration
	Filter      filter.Filter
	Recorder    Recorder
	Decoder     decoder.Decoder
	Reporter    Reporter
}

// Stats is a snapshot of loop counters.
type Stats struct {
	Received     uint64
	WouldBlock   uint64
	Runt         uint64
	Filtered     uint64
	DecodeErrors uint64
	RecordErrors uint64
	ARP          uint64
}

type counters struct {
	received, wouldBlock, runt, filtered, decodeErrors, recordErrors, arp atomic.Uint64
}

// Loop is single-consumer: Run, Replay and Handle must not be called concurrently.
type Loop struct {
	device string
	opts   Options
	stats  counters
}

func New(device string, opts Options) *Loop {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = time.Second
	}
	if opts.Decoder == nil {
		opts.Decoder = decoder.NewStandardDecoder()
	}
	if opts.Reporter == nil {
		opts.Reporter = NewLogReporter(device, false)
	}
	return &Loop{device: device, opts: opts}
}

// Run serves src until ctx is cancelled or the device fails. Cancellation
// returns nil; wait and read failures are returned wrapped.
func (l *Loop) Run(ctx context.Context, src Source) error {
	logger := log.GetLogger().WithField("device", src.Name())
	logger.Infof("dispatch loop started, wait timeout %s", l.opts.WaitTimeout)

	for {
		if ctx.Err() != nil {
			logger.Info("dispatch loop stopped")
			return nil
		}
		if err := src.Wait(l.opts.WaitTimeout); err != nil {
			return fmt.Errorf("wait on %s: %w", src.Name(), err)
		}
		if err := l.drain(ctx, src); err != nil {
			return err
		}
	}
}

// drain reads until the device reports ErrWouldBlock.
func (l *Loop) drain(ctx context.Context, src Source) error {
	for ctx.Err() == nil {
		frame, err := src.Receive()
		if errors.Is(err, tap.ErrWouldBlock) {
			l.stats.wouldBlock.Add(1)
			metrics.WouldBlockTotal.WithLabelValues(l.device).Inc()
			return nil
		}
		if err != nil {
			return fmt.Errorf("receive on %s: %w", src.Name(), err)
		}
		l.Handle(time.Now(), frame)
	}
	return nil
}

// Replay feeds recorded frames through Handle until EOF or cancellation.
func (l *Loop) Replay(ctx context.Context, r FrameReader) error {
	for ctx.Err() == nil {
		frame, ts, err := r.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		l.Handle(ts, frame)
	}
	return nil
}

// Handle processes one frame. It never panics on short input.
func (l *Loop) Handle(ts time.Time, frame []byte) {
	l.stats.received.Add(1)
	metrics.FramesReceivedTotal.WithLabelValues(l.device).Inc()
	metrics.BytesReceivedTotal.WithLabelValues(l.device).Add(float64(len(frame)))

	if l.opts.Recorder != nil {
		if err := l.opts.Recorder.WriteFrame(ts, frame); err != nil {
			l.stats.recordErrors.Add(1)
			metrics.RecordErrorsTotal.WithLabelValues(l.device).Inc()
			log.GetLogger().WithError(err).Warn("failed to record frame")
		}
	}

	if len(frame) < decoder.EthernetHeaderLen {
		l.drop(&l.stats.runt, metrics.DropRunt)
		log.GetLogger().WithField("len", len(frame)).Debug("runt frame dropped")
		return
	}

	if l.opts.Filter != nil && !l.opts.Filter.Match(frame) {
		l.drop(&l.stats.filtered, metrics.DropFiltered)
		return
	}

	pkt, err := l.opts.Decoder.Decode(frame)
	if err != nil {
		l.drop(&l.stats.decodeErrors, metrics.DropDecode)
		log.GetLogger().WithError(err).WithField("len", len(frame)).Debug("frame decode failed")
		return
	}

	metrics.EtherTypeTotal.WithLabelValues(l.device, pkt.EtherType.String()).Inc()
	if pkt.ARP != nil {
		l.stats.arp.Add(1)
		metrics.ARPOperationsTotal.WithLabelValues(l.device, pkt.ARP.Operation.String()).Inc()
	}
	l.opts.Reporter.Report(ts, pkt)
}

func (l *Loop) drop(c *atomic.Uint64, reason string) {
	c.Add(1)
	metrics.FramesDroppedTotal.WithLabelValues(l.device, reason).Inc()
}

func (l *Loop) Stats() Stats {
	return Stats{
		Received:     l.stats.received.Load(),
		WouldBlock:   l.stats.wouldBlock.Load(),
		Runt:         l.stats.runt.Load(),
		Filtered:     l.stats.filtered.Load(),
		DecodeErrors: l.stats.decodeErrors.Load(),
		RecordErrors: l.stats.recordErrors.Load(),
		ARP:          l.stats.arp.Load(),
	}
}
