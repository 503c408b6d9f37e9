package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BurningYang107/sensor-data-viewer/internal"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sdv-cli",
	Short: "Inspect, filter and export sensor CSV/Excel files from the command line",
	Long: `sdv-cli runs the dashboard's filtering pipeline against a local file:
the same timestamp detection, anomaly handling, filter stages and CSV export,
without starting the web server.

Filter flags are shared by all commands and can be preloaded from a YAML
preset via --filters; explicit flags win over preset values.`,
}

func main() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sensor-data-viewer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: error|warn|info|debug (overrides config)")

	rootCmd.AddCommand(
		newInspectCmd(),
		newSummaryCmd(),
		newPageCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	cfg, err := loadCLIConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = &cliConfig{LogLevel: defaultLogLevel}
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(strings.ToUpper(cfg.LogLevel)))
}
