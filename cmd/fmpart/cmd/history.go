package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmcut/partitioner/internal/repository"
	"github.com/fmcut/partitioner/pkg/config"
)

var historyLimit int

// historyCmd lists recent run-history records persisted by the worker,
// reading the same repository layer it writes through.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent partition run history",
	Long:  `History lists the most recent completed, failed, or infeasible runs recorded by the worker command.`,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	binName := BinName()
	historyCmd.Example = `  # List the 20 most recent runs
  ` + binName + ` history -c ./config.yaml -n 20`

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of recent runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig := &repository.DBConfig{
		Type:     cfg.Database.Type,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		MaxConns: cfg.Database.MaxConns,
	}

	gormDB, err := repository.NewGormDB(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos := repository.NewRepositories(gormDB, cfg.Database.Type)
	defer func() {
		if err := repos.Close(); err != nil {
			log.Warn("failed to close database connection: %v", err)
		}
	}()

	ctx := context.Background()
	runs, err := repos.Run.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No run history recorded yet.")
		return nil
	}

	fmt.Printf("%-36s %-8s %-6s %-10s %-10s %-6s\n", "JOB UUID", "MODE", "CAP", "STATUS", "FINAL CUT", "PASSES")
	for _, r := range runs {
		fmt.Printf("%-36s %-8s %-6d %-10s %-10d %-6d\n", r.JobUUID, r.Mode, r.Cap, r.Status, r.FinalCut, r.PassCount)
	}
	return nil
}
