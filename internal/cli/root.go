// Package cli provides the command-line interface for lumen.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/config"
	"github.com/jmylchreest/lumen/internal/version"
)

var (
	// Global flags
	globalConfigPath string
	globalLogJSON    bool

	// Loaded in PersistentPreRunE; every command can rely on them.
	appConfig = config.Default()
	logger    = hclog.NewNullLogger()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "lumen",
		Short: "Spectral and photometric light calibration",
		Long: `Lumen converts real-world light specifications into the colour and
brightness parameters a renderer consumes.

Spectral power distributions, colour temperatures and LED datasheet ratings
(mcd / mlm) are resolved to a linear RGB colour, an intensity and an exposure.
Scene files can be recomputed once, watched for changes or served over HTTP.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

// NewRootCmd returns the root command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&globalConfigPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVar(&globalLogJSON, "log-json", false, "write logs as JSON")

	// Set version template
	rootCmd.SetVersionTemplate(version.String() + "\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(spectralCmd)
	rootCmd.AddCommand(photometricCmd)
	rootCmd.AddCommand(temperatureCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(swatchCmd)
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	b := config.NewBuilder()
	if globalConfigPath != "" {
		b = b.WithFile(globalConfigPath)
	} else if p := config.DefaultPath(); p != "" {
		b = b.WithOptionalFile(p)
	}
	cfg, err := b.WithEnvConfig().Build()
	if err != nil {
		return err
	}
	if globalLogJSON {
		cfg.LogJSON = true
	}
	appConfig = cfg

	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	logger = newLogger(cfg, verbose, quiet)
	return nil
}

func newLogger(cfg config.Config, verbose, quiet bool) hclog.Logger {
	level := cfg.Level()
	switch {
	case quiet:
		level = hclog.Error
	case verbose && level > hclog.Debug:
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "lumen",
		Output:     os.Stderr,
		Level:      level,
		JSONFormat: cfg.LogJSON,
		Color:      hclog.AutoColor,
	})
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat.value == formatJSON {
			return writeJSON(cmd.OutOrStdout(), version.GetInfo())
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return nil
	},
}
