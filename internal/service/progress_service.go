package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
	"github.com/RubachokBoss/mx-portal/internal/repository"
)

// ProgressService owns the lifecycle of assigned rows: Future -> Assigned ->
// Done for the normal flow, plus the unconstrained admin override and the
// pack-level done marker.
type ProgressService interface {
	MarkComplete(ctx context.Context, req *models.MarkCompleteRequest) error
	FineTune(ctx context.Context, req *models.FineTuneRequest) error
	RecordView(ctx context.Context, req *models.RecordViewRequest) error
	// GetWorkRows returns the student's rows for one catalog work across
	// every pack; the admin checks them before a fine-tune override.
	GetWorkRows(ctx context.Context, username string, workID int) ([]models.AssignedWork, error)
	// StartNext promotes the student's oldest Future rows to Assigned.
	// batchSize <= 0 falls back to the configured default.
	StartNext(ctx context.Context, username string, batchSize int) (int, error)
	MarkPackDone(ctx context.Context, username string, packID int) error
	RestoreDonePack(ctx context.Context, username string, packID int) error
}

type progressService struct {
	assignedRepo   repository.AssignedWorkRepository
	donePackRepo   repository.DonePackRepository
	startBatchSize int
	logger         zerolog.Logger
}

func NewProgressService(
	assignedRepo repository.AssignedWorkRepository,
	donePackRepo repository.DonePackRepository,
	startBatchSize int,
	logger zerolog.Logger,
) ProgressService {
	if startBatchSize < 1 {
		startBatchSize = 3
	}
	return &progressService{
		assignedRepo:   assignedRepo,
		donePackRepo:   donePackRepo,
		startBatchSize: startBatchSize,
		logger:         logger,
	}
}

func (s *progressService) MarkComplete(ctx context.Context, req *models.MarkCompleteRequest) error {
	updated, err := s.assignedRepo.MarkComplete(ctx, req.Username, req.PackID, req.WorkID)
	if err != nil {
		return fmt.Errorf("failed to mark complete: %w", err)
	}
	if updated == 0 {
		return ErrRowNotFound
	}

	s.logger.Info().
		Str("username", req.Username).
		Int("pack_id", req.PackID).
		Int("work_id", req.WorkID).
		Msg("Work marked complete")

	return nil
}

func (s *progressService) FineTune(ctx context.Context, req *models.FineTuneRequest) error {
	status, ok := models.ParseWorkStatus(req.Status)
	if !ok {
		return ErrInvalidStatus
	}

	updated, err := s.assignedRepo.OverrideRow(ctx, req.Username, req.PackID, req.WorkID, status, req.Score, req.Incorrect)
	if err != nil {
		return fmt.Errorf("failed to override row: %w", err)
	}
	if updated == 0 {
		return ErrRowNotFound
	}

	s.logger.Info().
		Str("username", req.Username).
		Int("pack_id", req.PackID).
		Int("work_id", req.WorkID).
		Str("status", status.String()).
		Msg("Row fine-tuned")

	return nil
}

func (s *progressService) RecordView(ctx context.Context, req *models.RecordViewRequest) error {
	updated, err := s.assignedRepo.IncrementViews(ctx, req.Username, req.PackID, req.WorkID)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if updated == 0 {
		return ErrRowNotFound
	}

	return nil
}

func (s *progressService) GetWorkRows(ctx context.Context, username string, workID int) ([]models.AssignedWork, error) {
	rows, err := s.assignedRepo.GetByUserAndWork(ctx, username, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assigned rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrRowNotFound
	}

	return rows, nil
}

func (s *progressService) StartNext(ctx context.Context, username string, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = s.startBatchSize
	}

	promoted, err := s.assignedRepo.PromoteFuture(ctx, username, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to promote future rows: %w", err)
	}

	s.logger.Info().
		Str("username", username).
		Int("promoted", promoted).
		Msg("Future rows promoted to assigned")

	return promoted, nil
}

func (s *progressService) MarkPackDone(ctx context.Context, username string, packID int) error {
	if err := s.donePackRepo.Set(ctx, username, packID); err != nil {
		return fmt.Errorf("failed to set done pack: %w", err)
	}

	s.logger.Info().
		Str("username", username).
		Int("pack_id", packID).
		Msg("Pack marked done")

	return nil
}

func (s *progressService) RestoreDonePack(ctx context.Context, username string, packID int) error {
	deleted, err := s.donePackRepo.Delete(ctx, username, packID)
	if err != nil {
		return fmt.Errorf("failed to delete done pack: %w", err)
	}
	if deleted == 0 {
		return ErrDoneMarkMissing
	}

	s.logger.Info().
		Str("username", username).
		Int("pack_id", packID).
		Msg("Done pack restored")

	return nil
}
