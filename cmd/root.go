// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	filterName string

	// Capture flags
	address     string
	waitTimeout time.Duration
	pcapPath    string
)

// rootCmd opens a TAP interface and logs the frames it receives.
var rootCmd = &cobra.Command{
	Use:   "tapwatch [flags] <ifname>",
	Short: "Create a TAP interface and decode the Ethernet/ARP traffic it receives",
	Long: `tapwatch creates (or attaches to) a layer-2 TAP interface, optionally assigns
an address and brings the link up, then decodes every received frame.

ARP traffic is logged at info level; other frames are logged at debug level.

Examples:
  tapwatch tap0                              # attach to tap0 with default config
  tapwatch -a 10.0.0.5/24 tap0               # assign an address and bring the link up
  tapwatch -c tapwatch.yml --pcap out.pcap tap0
  tapwatch --filter arp -t 250ms tap0`,
	Args:          cobra.ExactArgs(1),
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig(captureOverrides{
			ifname:      args[0],
			address:     address,
			waitTimeout: waitTimeout,
			pcapPath:    pcapPath,
			filter:      filterName,
		})
		if err != nil {
			return err
		}
		return runCapture(ctx, cfg, cmd.OutOrStdout())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults and TAPWATCH_* env only when empty)")
	rootCmd.PersistentFlags().StringVar(&filterName, "filter", "",
		"frame filter: none, arp, ip or ip6 (overrides dispatch.filter)")

	rootCmd.Flags().StringVarP(&address, "address", "a", "",
		"address to assign, CIDR or bare IPv4 (overrides device.address)")
	rootCmd.Flags().DurationVarP(&waitTimeout, "timeout", "t", 0,
		"readiness wait slice (overrides device.wait_timeout)")
	rootCmd.Flags().StringVar(&pcapPath, "pcap", "",
		"record every received frame to this pcap file")

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
}
