package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fmcut/partitioner/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string
	logger     utils.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "fmpart",
	Short: "A Fiduccia-Mattheyses hypergraph bipartitioner",
	Long: `fmpart partitions a Bookshelf-style VLSI netlist (.aux/.nodes/.nets)
into two balanced halves by iterative-improvement cut minimization.

It supports a one-shot local run, a queue-driven worker daemon fed by a
database or HTTP job source, and a run-history browser.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./config.yaml)")

	binName := BinName()
	rootCmd.Example = `  # Partition a netlist in place
  ` + binName + ` partition -i ./test/ibm01.aux -m area --cap 50000

  # Run the queue-driven worker against the configured sources
  ` + binName + ` worker -c ./config.yaml

  # List recent run history
  ` + binName + ` history -c ./config.yaml -n 20`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
