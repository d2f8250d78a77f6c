// Package pcapfile records frames to, and replays frames from, classic pcap files.
package pcapfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Writer appends Ethernet frames to a pcap stream.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	pw     *pcapgo.Writer
	frames uint64
}

// Create truncates path and writes a pcap header with the given snap length.
func Create(path string, snaplen uint32) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcap file %s: %w", path, err)
	}
	w, err := newWriter(f, snaplen)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewWriter writes the pcap header to out. Close flushes but does not close out.
func NewWriter(out io.Writer, snaplen uint32) (*Writer, error) {
	return newWriter(out, snaplen)
}

func newWriter(out io.Writer, snaplen uint32) (*Writer, error) {
	buf := bufio.NewWriter(out)
	pw := pcapgo.NewWriter(buf)
	if err := pw.WriteFileHeader(snaplen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Writer{buf: buf, pw: pw}, nil
}

// WriteFrame records one frame captured at ts.
func (w *Writer) WriteFrame(ts time.Time, frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(frame),
		Length:        len(frame),
	}
	if err := w.pw.WritePacket(ci, frame); err != nil {
		return fmt.Errorf("failed to write pcap record: %w", err)
	}
	w.frames++
	return nil
}

// Frames is the number of records written so far.
func (w *Writer) Frames() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.buf.Flush()
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
		w.file = nil
	}
	return err
}

// Reader yields frames from a pcap file with Ethernet link type.
type Reader struct {
	file *os.File
	pr   *pcapgo.Reader
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

func NewReader(in io.Reader) (*Reader, error) {
	pr, err := pcapgo.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}
	if lt := pr.LinkType(); lt != layers.LinkTypeEthernet {
		return nil, fmt.Errorf("unsupported pcap link type %s", lt)
	}
	return &Reader{pr: pr}, nil
}

// ReadFrame returns the next frame, or io.EOF at the end of the file.
func (r *Reader) ReadFrame() ([]byte, time.Time, error) {
	data, ci, err := r.pr.ReadPacketData()
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, ci.Timestamp, nil
}

func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
