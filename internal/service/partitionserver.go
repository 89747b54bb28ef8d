package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fmcut/partitioner/internal/ingest"
	"github.com/fmcut/partitioner/internal/partition"
	"github.com/fmcut/partitioner/internal/storage"
	"github.com/fmcut/partitioner/pkg/model"
	"github.com/fmcut/partitioner/pkg/utils"
	"github.com/fmcut/partitioner/pkg/writer"
)

// PartitionServer is the concrete PartitionServiceServer backing `fmpart
// serve`: it runs the same ingest -> Controller -> Driver -> writer pipeline
// as the one-shot CLI and the queue-driven worker, but over gRPC.
type PartitionServer struct {
	storage storage.Storage
	workDir string
	logger  utils.Logger
	writer  *writer.PartitionWriter
}

// NewPartitionServer creates a PartitionServer. store may be nil, in which
// case AuxFile in every request is read directly from the local filesystem.
func NewPartitionServer(store storage.Storage, workDir string, logger utils.Logger) *PartitionServer {
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}
	return &PartitionServer{
		storage: store,
		workDir: workDir,
		logger:  logger,
		writer:  writer.NewPartitionWriter(),
	}
}

// resolveAux returns a local path to req.AuxFile, fetching it (and its
// sibling .nodes/.nets files) from s.storage first if the path does not
// already exist on disk.
func (s *PartitionServer) resolveAux(ctx context.Context, auxFile string) (string, error) {
	if _, err := os.Stat(auxFile); err == nil {
		return auxFile, nil
	}
	if s.storage == nil {
		return "", fmt.Errorf("aux file %q not found locally and no storage backend configured", auxFile)
	}

	dir := filepath.Join(s.workDir, strings.ReplaceAll(auxFile, string(filepath.Separator), "_"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	prefix := strings.TrimSuffix(auxFile, filepath.Ext(auxFile))
	for _, ext := range []string{".aux", ".nodes", ".nets"} {
		key := prefix + ext
		exists, err := s.storage.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", key, err)
		}
		if !exists {
			continue
		}
		if err := s.storage.DownloadFile(ctx, key, filepath.Join(dir, filepath.Base(key))); err != nil {
			return "", fmt.Errorf("download %s: %w", key, err)
		}
	}
	return filepath.Join(dir, filepath.Base(prefix)+".aux"), nil
}

// Partition implements PartitionServiceServer: one unary call that runs the
// driver to convergence and returns the final partition.
func (s *PartitionServer) Partition(ctx context.Context, req *model.PartitionRequest) (*model.PartitionResponse, error) {
	if req.JobUUID == "" {
		req.JobUUID = uuid.NewString()
	}

	localAux, err := s.resolveAux(ctx, req.AuxFile)
	if err != nil {
		return nil, err
	}

	mode, err := partition.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	m, err := ingest.LoadAux(ctx, localAux)
	if err != nil {
		return &model.PartitionResponse{JobUUID: req.JobUUID, Error: err.Error(), FinishedAt: time.Now()}, nil
	}

	controller := partition.NewController(m, mode, req.Cap)
	result, err := partition.Run(ctx, controller, s.logger)
	if err != nil {
		return &model.PartitionResponse{JobUUID: req.JobUUID, Error: err.Error(), FinishedAt: time.Now()}, nil
	}

	partA, partB := controller.State().PartitionNames()
	resp := &model.PartitionResponse{
		JobUUID:    req.JobUUID,
		FinalCut:   result.FinalCut,
		PassCount:  len(result.Passes),
		PartitionA: partA,
		PartitionB: partB,
		FinishedAt: time.Now(),
	}

	if req.OutputDir != "" {
		out := filepath.Join(req.OutputDir, filepath.Base(writer.OutputPathForAux(req.AuxFile)))
		if err := s.writer.WriteToFile(out, partA, partB); err != nil {
			resp.Error = fmt.Sprintf("failed to write output: %v", err)
		} else {
			resp.OutputFile = out
		}
	}

	return resp, nil
}

// PartitionStream implements PartitionServiceServer: it drives the
// pass-until-no-improvement loop itself so it can emit one
// PartitionProgress message per pass, then a final message carrying the
// converged PartitionResponse.
func (s *PartitionServer) PartitionStream(req *model.PartitionRequest, stream PartitionService_PartitionStreamServer) error {
	ctx := stream.Context()
	if req.JobUUID == "" {
		req.JobUUID = uuid.NewString()
	}

	localAux, err := s.resolveAux(ctx, req.AuxFile)
	if err != nil {
		return err
	}
	mode, err := partition.ParseMode(req.Mode)
	if err != nil {
		return err
	}
	m, err := ingest.LoadAux(ctx, localAux)
	if err != nil {
		return err
	}

	controller := partition.NewController(m, mode, req.Cap)
	if err := controller.Feasible(); err != nil {
		return err
	}

	prev := controller.Cut()
	var passes []partition.PassResult
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pr := controller.RunPass()
		passes = append(passes, pr)
		if err := stream.Send(&model.PartitionProgress{Pass: &model.PassSummary{
			Index:      len(passes),
			StartCut:   pr.StartCut,
			BestCut:    pr.BestCut,
			MovesTried: pr.MovesTried,
			MovesKept:  pr.MovesKept,
			Improved:   pr.Improved,
		}}); err != nil {
			return err
		}

		next := controller.Cut()
		if next < prev {
			prev = next
			continue
		}
		break
	}

	partA, partB := controller.State().PartitionNames()
	return stream.Send(&model.PartitionProgress{
		Done: true,
		Response: &model.PartitionResponse{
			JobUUID:    req.JobUUID,
			FinalCut:   prev,
			PassCount:  len(passes),
			PartitionA: partA,
			PartitionB: partB,
			FinishedAt: time.Now(),
		},
	})
}
