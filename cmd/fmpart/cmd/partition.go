package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fmcut/partitioner/internal/ingest"
	"github.com/fmcut/partitioner/internal/partition"
	"github.com/fmcut/partitioner/pkg/writer"
)

var (
	// Partition command flags
	auxFile    string
	partMode   string
	partCap    int
	outputFile string
)

// partitionCmd runs one FM partitioning job to convergence against a
// local Bookshelf netlist, with no daemon or database involved.
var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Partition a Bookshelf netlist into two balanced halves",
	Long: `Partition reads a .aux file (and the .nodes/.nets files it references),
runs the Fiduccia-Mattheyses heuristic to convergence under the given
per-partition capacity, and writes the resulting two-way assignment.

Exit codes: 0 success, 1 input-load failure, 2 infeasible partition,
3 output-write failure.`,
	RunE: runPartition,
}

func init() {
	rootCmd.AddCommand(partitionCmd)

	binName := BinName()
	partitionCmd.Example = `  # Partition a netlist, bounding per-partition area at 50000
  ` + binName + ` partition -i ./test/ibm01.aux -m area --cap 50000

  # Bound per-partition cell count instead
  ` + binName + ` partition -i ./test/ibm01.aux -m num --cap 256`

	partitionCmd.Flags().StringVarP(&auxFile, "input", "i", "", "Path to the .aux file (required)")
	partitionCmd.Flags().StringVarP(&partMode, "mode", "m", "area", "Capacity mode: area or num")
	partitionCmd.Flags().IntVar(&partCap, "cap", 0, "Per-partition capacity bound (required)")
	partitionCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: results/<aux-stem>.part)")
	partitionCmd.MarkFlagRequired("input")
	partitionCmd.MarkFlagRequired("cap")
}

func runPartition(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	mode, err := partition.ParseMode(partMode)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	out := outputFile
	if out == "" {
		out = writer.OutputPathForAux(auxFile)
	}

	log.Info("Loading netlist from %s", auxFile)
	ctx := context.Background()
	m, err := ingest.LoadAux(ctx, auxFile)
	if err != nil {
		log.Error("failed to load netlist: %v", err)
		os.Exit(1)
	}
	log.Info("Loaded %d cells, %d nets", m.NumCells(), m.NumNets())

	controller := partition.NewController(m, mode, partCap)
	result, err := partition.Run(ctx, controller, log)
	if err != nil {
		if errors.Is(err, partition.ErrInfeasible) || errors.Is(err, partition.ErrNoMovableCells) {
			log.Warn("partition is infeasible: %v", err)
			pw := writer.NewPartitionWriter()
			if writeErr := pw.WriteInfeasible(out, err); writeErr != nil {
				log.Error("failed to write infeasibility diagnostic: %v", writeErr)
				os.Exit(3)
			}
			os.Exit(2)
		}
		log.Error("partition run failed: %v", err)
		os.Exit(1)
	}

	partA, partB := controller.State().PartitionNames()
	pw := writer.NewPartitionWriter()
	if err := pw.WriteToFile(out, partA, partB); err != nil {
		log.Error("failed to write output: %v", err)
		os.Exit(3)
	}

	log.Info("Converged after %d pass(es): final cut = %d", len(result.Passes), result.FinalCut)
	log.Info("Partition A: %d cells, Partition B: %d cells", len(partA), len(partB))
	fmt.Printf("final cut: %d\nwritten to: %s\n", result.FinalCut, out)

	return nil
}
