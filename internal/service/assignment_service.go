package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
	"github.com/RubachokBoss/mx-portal/internal/repository"
	"github.com/RubachokBoss/mx-portal/internal/service/integration"
)

type AssignmentService interface {
	// Assign expands the pack onto the student's queue. With force=false a
	// detected conflict turns the call into a dry-run: the report comes
	// back, nothing is written.
	Assign(ctx context.Context, student string, packID int, force bool) (*models.AssignmentResult, error)
	// AssignMany runs Assign per student; one student's failure never
	// aborts the others.
	AssignMany(ctx context.Context, req *models.AssignRequest) ([]models.AssignmentResult, error)
}

type assignmentService struct {
	packRepo     repository.PackRepository
	assignedRepo repository.AssignedWorkRepository
	events       integration.EventPublisher
	logger       zerolog.Logger
}

func NewAssignmentService(
	packRepo repository.PackRepository,
	assignedRepo repository.AssignedWorkRepository,
	events integration.EventPublisher,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		packRepo:     packRepo,
		assignedRepo: assignedRepo,
		events:       events,
		logger:       logger,
	}
}

func (s *assignmentService) Assign(ctx context.Context, student string, packID int, force bool) (*models.AssignmentResult, error) {
	student = strings.TrimSpace(student)
	if student == "" {
		return nil, NewValidationError("student username is required")
	}

	pack, err := s.packRepo.GetByID(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pack: %w", err)
	}
	if pack == nil || pack.IsDeleted {
		return nil, ErrPackNotFound
	}

	works, err := s.packRepo.GetWorks(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to expand pack: %w", err)
	}
	if len(works) == 0 {
		return nil, ErrEmptyPack
	}

	conflicts, err := s.detectConflicts(ctx, student, packID, works)
	if err != nil {
		return nil, err
	}

	if len(conflicts) > 0 && !force {
		return &models.AssignmentResult{
			Student:       student,
			Success:       false,
			Conflict:      true,
			ConflictItems: conflicts,
			Message:       fmt.Sprintf("%d work(s) already assigned under another pack; repeat with force to proceed", len(conflicts)),
		}, nil
	}

	conflictSet := make(map[int]bool, len(conflicts))
	for _, c := range conflicts {
		conflictSet[c.ID] = true
	}

	now := time.Now()
	rows := make([]models.AssignedWork, 0, len(works))
	for i, work := range works {
		status := models.StatusFuture
		if conflictSet[work.WorkID] {
			// Уже встречалась в другом паке — сразу в Past.
			status = models.StatusPast
		}

		rows = append(rows, models.AssignedWork{
			Username:    student,
			PackID:      packID,
			WorkID:      work.WorkID,
			WorkName:    work.WorkName,
			WorkLink:    work.WorkLink,
			WorkLevel:   work.WorkLevel,
			PackDesc:    pack.PackDesc,
			WorkRank:    i + 1,
			WorkStatus:  status,
			LastUpdated: now,
		})
	}

	added, err := s.assignedRepo.InsertRows(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assigned works: %w", err)
	}

	if added > 0 && s.events != nil {
		event := &models.PackAssignedEvent{
			Student:   student,
			PackID:    packID,
			RowsAdded: added,
			Forced:    force,
			Timestamp: now.Unix(),
		}
		if err := s.events.PublishPackAssigned(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish pack assigned event")
		}
	}

	s.logger.Info().
		Str("student", student).
		Int("pack_id", packID).
		Int("rows_added", added).
		Int("conflicts_overridden", len(conflicts)).
		Msg("Pack assigned")

	return &models.AssignmentResult{
		Student:   student,
		Success:   true,
		RowsAdded: added,
		Message:   fmt.Sprintf("%d work(s) added, %d conflict(s) resolved", added, len(conflicts)),
	}, nil
}

// detectConflicts finds pack works the student already has under a different
// pack. Videos are exempt: they recur across packs on purpose.
func (s *assignmentService) detectConflicts(ctx context.Context, student string, packID int, works []models.WorkItem) ([]models.ConflictItem, error) {
	workIDs := make([]int, 0, len(works))
	nameByID := make(map[int]string, len(works))
	for _, work := range works {
		workIDs = append(workIDs, work.WorkID)
		nameByID[work.WorkID] = work.WorkName
	}

	existing, err := s.assignedRepo.GetByUserAndWorks(ctx, student, workIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignments: %w", err)
	}

	var conflicts []models.ConflictItem
	seen := make(map[int]bool)
	for _, row := range existing {
		if row.PackID == packID || seen[row.WorkID] {
			continue
		}
		if models.IsVideoName(nameByID[row.WorkID]) {
			continue
		}
		seen[row.WorkID] = true
		conflicts = append(conflicts, models.ConflictItem{
			ID:           row.WorkID,
			Name:         nameByID[row.WorkID],
			ExistingPack: row.PackID,
		})
	}

	return conflicts, nil
}

func (s *assignmentService) AssignMany(ctx context.Context, req *models.AssignRequest) ([]models.AssignmentResult, error) {
	results := make([]models.AssignmentResult, 0, len(req.Students))

	for _, student := range req.Students {
		result, err := s.Assign(ctx, student, req.PackID, req.Force)
		if err != nil {
			// Ошибка одного студента не прерывает остальных.
			s.logger.Error().Err(err).
				Str("student", student).
				Int("pack_id", req.PackID).
				Msg("Assignment failed")

			results = append(results, models.AssignmentResult{
				Student: student,
				Success: false,
				Message: err.Error(),
			})
			continue
		}
		results = append(results, *result)
	}

	return results, nil
}
