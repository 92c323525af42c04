// Command nanosims reduces NanoSIMS oxygen isotope images to IMF-corrected
// delta values.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nanosimsreduce/internal/logging"
	"nanosimsreduce/pkg/config"
)

var (
	configPath string
	verbose    bool
	logJSON    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nanosims",
		Short: "NanoSIMS isotope image reduction",
		Long: `nanosims reduces NanoSIMS isotope images to calibrated isotope ratios.

Commands:
  analyze   Reduce sample files to IMF-corrected delta values
  standard  Reduce a standard and optionally store it as the calibration
  config    Manage configuration files`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "nanosims.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newStandardCommand())
	rootCmd.AddCommand(newConfigCommand())
	return rootCmd
}

// loadConfig reads the configuration file and builds the logger from it
// and the persistent flags.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	log := logging.New(logging.Options{
		Out:     os.Stderr,
		JSON:    logJSON || cfg.Output.LogJSON,
		Verbose: verbose || cfg.Output.Verbose,
	})
	return cfg, log, nil
}
