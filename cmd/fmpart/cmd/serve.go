package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/fmcut/partitioner/internal/service"
	"github.com/fmcut/partitioner/internal/storage"
	"github.com/fmcut/partitioner/pkg/config"
	"github.com/fmcut/partitioner/pkg/telemetry"
)

var servePort int

// serveCmd starts the gRPC PartitionService: a long-lived process exposing
// the core partitioner over the network instead of the local CLI.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC partition service",
	Long: `Serve starts a gRPC server exposing PartitionService: a unary
Partition call and a server-streaming PartitionStream call that reports
per-pass cut progress as the driver converges.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	binName := BinName()
	serveCmd.Example = `  # Start the gRPC service on the default port
  ` + binName + ` serve -c ./config.yaml -p 9090`

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 9090, "Port for the gRPC server")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(context.Background())
	if err != nil {
		log.Warn("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warn("failed to shut down telemetry: %v", err)
		}
	}()

	store, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", servePort))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", servePort, err)
	}

	grpcServer := grpc.NewServer()
	partitionServer := service.NewPartitionServer(store, cfg.GetJobDir("serve"), log)
	service.RegisterPartitionServiceServer(grpcServer, partitionServer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down gRPC server...")
		grpcServer.GracefulStop()
	}()

	log.Info("PartitionService listening on :%d", servePort)
	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server error: %w", err)
	}
	return nil
}
