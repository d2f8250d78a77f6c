package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"firestige.xyz/tapwatch/internal/dispatch"
	"firestige.xyz/tapwatch/internal/filter"
	"firestige.xyz/tapwatch/internal/log"
	"firestige.xyz/tapwatch/internal/sink/pcapfile"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.pcap>",
	Short: "Decode frames from a pcap file",
	Long: `Feed an Ethernet pcap file through the same filter, decode and report path
used for a live device. No TAP device or privileges are required.

Examples:
  tapwatch replay capture.pcap
  tapwatch replay --filter arp capture.pcap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig(captureOverrides{filter: filterName})
		if err != nil {
			return err
		}
		if err := log.Init(&cfg.Log); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return runReplay(ctx, args[0], cfg.Dispatch.Filter, cfg.Dispatch.BPF, cfg.Dispatch.LogUnknown, cmd.OutOrStdout())
	},
}

func runReplay(ctx context.Context, path, name string, raw []filter.RawInstruction, logUnknown bool, out io.Writer) (err error) {
	f, err := filter.New(name, raw)
	if err != nil {
		return err
	}

	r, err := pcapfile.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, r.Close())
	}()

	loop := dispatch.New(path, dispatch.Options{
		Filter:   f,
		Reporter: dispatch.NewLogReporter(path, logUnknown),
	})
	err = loop.Replay(ctx, r)
	printStats(out, path, loop.Stats())
	return err
}
