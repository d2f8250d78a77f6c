package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the effective values",
	Long: `Load the configuration file (plus defaults and TAPWATCH_* environment
overrides), validate it, and print the result as YAML.

Examples:
  tapwatch validate -c tapwatch.yml
  TAPWATCH_DEVICE_MTU=9000 tapwatch validate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout())
	},
}

func runValidate(out io.Writer) error {
	cfg, err := loadConfig(captureOverrides{filter: filterName})
	if err != nil {
		fmt.Fprintf(out, "INVALID: %v\n", err)
		return err
	}
	return cfg.Dump(out)
}
