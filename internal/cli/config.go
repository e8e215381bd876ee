package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Show the effective configuration: built-in defaults, overridden by the config
file, overridden by LUMEN_* environment variables.

Environment variables:
  LUMEN_LOG_LEVEL, LUMEN_LOG_JSON, LUMEN_TICK_INTERVAL, LUMEN_LISTEN_ADDR,
  LUMEN_MAX_CURVE_BYTES, LUMEN_WHITE_REFERENCE (r,g,b)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if outputFormat.value == formatJSON {
			return writeJSON(cmd.OutOrStdout(), appConfig)
		}
		data, err := appConfig.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

// configPathCmd prints the config file location.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		path := globalConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}
