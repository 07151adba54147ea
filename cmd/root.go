package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/isobytes/cnreduce/internal/config"
	"github.com/spf13/cobra"
)

// appVersion is recorded in every analysis-log record so a row can always be
// traced back to the software that wrote it.
const appVersion = "cnreduce 1.0.0"

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "cnreduce",
	Short: "cnreduce: reduce and calibrate CN elemental-analyzer isotope data",
	Long: `cnreduce reduces raw carbon and nitrogen elemental-analyzer peak tables into
an append-only analysis log, then calibrates the log into final d15N (AirN2)
and d13C (VPDB) values with quality-control statistics.`,
	Version: appVersion,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cnreduce/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded; run 'cnreduce config set method_dir <path>' first")
	}
	return cfg, nil
}
