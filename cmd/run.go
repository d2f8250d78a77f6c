package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"firestige.xyz/tapwatch/internal/config"
	"firestige.xyz/tapwatch/internal/dispatch"
	"firestige.xyz/tapwatch/internal/filter"
	"firestige.xyz/tapwatch/internal/log"
	"firestige.xyz/tapwatch/internal/metrics"
	"firestige.xyz/tapwatch/internal/sink/pcapfile"
	"firestige.xyz/tapwatch/internal/tap"
)

// captureDevice is the part of *tap.Device the capture command uses.
type captureDevice interface {
	dispatch.Source
	BufferSize() int
	Close() error
}

// linkConfigurator is satisfied by *tap.LinkConfigurator.
type linkConfigurator interface {
	Configure(ctx context.Context, name, addr string) error
}

var (
	openDevice = func(name string, opts tap.Options) (captureDevice, error) {
		d, err := tap.Open(name, opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	newLinkConfigurator = func() linkConfigurator {
		return tap.NewLinkConfigurator()
	}
)

// captureOverrides are command-line values that take precedence over the file.
type captureOverrides struct {
	ifname      string
	address     string
	waitTimeout time.Duration
	pcapPath    string
	filter      string
}

func loadConfig(o captureOverrides) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, o captureOverrides) {
	if o.ifname != "" {
		cfg.Device.Name = o.ifname
	}
	if o.address != "" {
		cfg.Device.Address = o.address
	}
	if o.waitTimeout > 0 {
		cfg.Device.WaitTimeout = o.waitTimeout
	}
	if o.pcapPath != "" {
		cfg.Dispatch.PcapPath = o.pcapPath
	}
	if o.filter != "" {
		cfg.Dispatch.Filter = o.filter
		cfg.Dispatch.BPF = nil
	}
}

// runCapture opens the device and serves it until ctx is done. The device and
// the pcap sink are closed on every return path.
func runCapture(ctx context.Context, cfg *config.Config, out io.Writer) (err error) {
	if err := log.Init(&cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	logger := log.GetLogger()

	f, err := filter.New(cfg.Dispatch.Filter, cfg.Dispatch.BPF)
	if err != nil {
		return err
	}

	dev, err := openDevice(cfg.Device.Name, cfg.TapOptions())
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dev.Close())
	}()
	logger = logger.WithField("device", dev.Name())
	logger.Infof("tap device ready, buffer %d bytes", dev.BufferSize())

	if cfg.Device.ConfigureLink || cfg.Device.Address != "" {
		if err := newLinkConfigurator().Configure(ctx, dev.Name(), cfg.Device.Address); err != nil {
			return err
		}
		logger.WithField("address", cfg.Device.Address).Info("link configured")
	}

	opts := dispatch.Options{
		WaitTimeout: cfg.Device.WaitTimeout,
		Filter:      f,
		Reporter:    dispatch.NewLogReporter(dev.Name(), cfg.Dispatch.LogUnknown),
	}
	if cfg.Dispatch.PcapPath != "" {
		w, err := pcapfile.Create(cfg.Dispatch.PcapPath, uint32(dev.BufferSize()))
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, w.Close())
		}()
		opts.Recorder = w
		logger.WithField("path", cfg.Dispatch.PcapPath).Info("recording frames")
	}

	loop := dispatch.New(dev.Name(), opts)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return loop.Run(ctx, dev)
	})
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		p.Go(srv.Run)
	}
	err = p.Wait()

	printStats(out, dev.Name(), loop.Stats())
	return err
}

func printStats(out io.Writer, name string, s dispatch.Stats) {
	fmt.Fprintf(out, "%s: %d received, %d arp, %d runt, %d filtered, %d decode errors, %d record errors\n",
		name, s.Received, s.ARP, s.Runt, s.Filtered, s.DecodeErrors, s.RecordErrors)
}
