package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
	"github.com/RubachokBoss/mx-portal/internal/repository"
)

type CatalogService interface {
	CreateWorkItem(ctx context.Context, req *models.CreateWorkItemRequest) (*models.WorkItem, error)
	UpdateWorkItem(ctx context.Context, id int, req *models.CreateWorkItemRequest) error
	GetCatalog(ctx context.Context, page, limit int) (*models.CatalogResponse, error)
	LookupWorkByLegacyID(ctx context.Context, alias string) (*models.WorkItem, error)
	// CreateOrUpdatePack resolves the newline-delimited token list (numeric
	// work ids or legacy aliases) against the catalog in one batch, then
	// upserts the pack with its ordered contents.
	CreateOrUpdatePack(ctx context.Context, req *models.CreatePackRequest) (*models.CreatePackResponse, error)
	GetPacks(ctx context.Context, page, limit int) (*models.PacksResponse, error)
	ExpandPack(ctx context.Context, packID int) ([]models.WorkItem, error)
	DeletePack(ctx context.Context, packID int) error
	RestorePack(ctx context.Context, packID int) error
}

type catalogService struct {
	workRepo repository.WorkRepository
	packRepo repository.PackRepository
	logger   zerolog.Logger
}

func NewCatalogService(workRepo repository.WorkRepository, packRepo repository.PackRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		workRepo: workRepo,
		packRepo: packRepo,
		logger:   logger,
	}
}

func (s *catalogService) CreateWorkItem(ctx context.Context, req *models.CreateWorkItemRequest) (*models.WorkItem, error) {
	now := time.Now()
	work := &models.WorkItem{
		WorkName:  strings.TrimSpace(req.WorkName),
		WorkLink:  strings.TrimSpace(req.WorkLink),
		WorkLevel: strings.TrimSpace(req.WorkLevel),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if alias := strings.TrimSpace(req.OldWorkID); alias != "" {
		work.OldWorkID = &alias
	}

	if err := s.workRepo.Create(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to create work item: %w", err)
	}

	s.logger.Info().
		Int("work_id", work.WorkID).
		Str("work_name", work.WorkName).
		Msg("Work item created")

	return work, nil
}

func (s *catalogService) UpdateWorkItem(ctx context.Context, id int, req *models.CreateWorkItemRequest) error {
	existing, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get work item: %w", err)
	}
	if existing == nil {
		return ErrWorkNotFound
	}

	existing.WorkName = strings.TrimSpace(req.WorkName)
	existing.WorkLink = strings.TrimSpace(req.WorkLink)
	existing.WorkLevel = strings.TrimSpace(req.WorkLevel)
	existing.OldWorkID = nil
	if alias := strings.TrimSpace(req.OldWorkID); alias != "" {
		existing.OldWorkID = &alias
	}
	existing.UpdatedAt = time.Now()

	return s.workRepo.Update(ctx, existing)
}

func (s *catalogService) GetCatalog(ctx context.Context, page, limit int) (*models.CatalogResponse, error) {
	page, limit = normalizePaging(page, limit)

	works, total, err := s.workRepo.GetAll(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	return &models.CatalogResponse{
		Works: works,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *catalogService) LookupWorkByLegacyID(ctx context.Context, alias string) (*models.WorkItem, error) {
	work, err := s.workRepo.GetByLegacyID(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup legacy id: %w", err)
	}
	if work == nil {
		return nil, ErrWorkNotFound
	}

	return work, nil
}

func (s *catalogService) CreateOrUpdatePack(ctx context.Context, req *models.CreatePackRequest) (*models.CreatePackResponse, error) {
	desc := strings.TrimSpace(req.PackDesc)
	if desc == "" {
		return nil, NewValidationError("pack description is required")
	}

	workIDs, err := s.resolveTokens(ctx, req.RawIDList)
	if err != nil {
		return nil, err
	}

	pack := &models.WorkPack{
		PackID:      req.PackID,
		PackDesc:    desc,
		BroadArea:   strings.TrimSpace(req.BroadArea),
		LastUpdated: time.Now(),
	}

	if req.PackID > 0 {
		existing, err := s.packRepo.GetByID(ctx, req.PackID)
		if err != nil {
			return nil, fmt.Errorf("failed to get pack: %w", err)
		}
		if existing == nil {
			return nil, ErrPackNotFound
		}

		if err := s.packRepo.Update(ctx, pack, workIDs); err != nil {
			return nil, fmt.Errorf("failed to update pack: %w", err)
		}
	} else {
		if err := s.packRepo.Create(ctx, pack, workIDs); err != nil {
			return nil, fmt.Errorf("failed to create pack: %w", err)
		}
	}

	s.logger.Info().
		Int("pack_id", pack.PackID).
		Str("pack_desc", pack.PackDesc).
		Int("total_works", len(workIDs)).
		Msg("Pack saved")

	return &models.CreatePackResponse{
		PackID:     pack.PackID,
		TotalWorks: len(workIDs),
		UpdatedAt:  pack.LastUpdated,
	}, nil
}

// resolveTokens turns the newline-delimited id list into ordered work ids.
// Numeric tokens and legacy aliases are both checked against the catalog in
// one batch per kind; any unresolvable token fails the whole call.
func (s *catalogService) resolveTokens(ctx context.Context, rawList string) ([]int, error) {
	var (
		tokens  []string
		ids     []int
		aliases []string
	)

	for _, line := range strings.Split(rawList, "\n") {
		token := strings.TrimSpace(line)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)

		if id, err := strconv.Atoi(token); err == nil {
			ids = append(ids, id)
		} else {
			aliases = append(aliases, token)
		}
	}

	if len(tokens) == 0 {
		return nil, NewValidationError("work id list is empty")
	}

	byID, err := s.workRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work ids: %w", err)
	}

	byAlias, err := s.workRepo.GetByLegacyIDs(ctx, aliases)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve legacy ids: %w", err)
	}

	var (
		resolved []int
		missing  []string
	)
	for _, token := range tokens {
		if id, err := strconv.Atoi(token); err == nil {
			if _, ok := byID[id]; !ok {
				missing = append(missing, token)
				continue
			}
			resolved = append(resolved, id)
		} else {
			work, ok := byAlias[token]
			if !ok {
				missing = append(missing, token)
				continue
			}
			resolved = append(resolved, work.WorkID)
		}
	}

	if len(missing) > 0 {
		return nil, NewValidationError("unresolvable work ids", missing...)
	}

	return resolved, nil
}

func (s *catalogService) GetPacks(ctx context.Context, page, limit int) (*models.PacksResponse, error) {
	page, limit = normalizePaging(page, limit)

	packs, total, err := s.packRepo.GetAll(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get packs: %w", err)
	}

	return &models.PacksResponse{
		Packs: packs,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *catalogService) ExpandPack(ctx context.Context, packID int) ([]models.WorkItem, error) {
	pack, err := s.packRepo.GetByID(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pack: %w", err)
	}
	if pack == nil {
		return nil, ErrPackNotFound
	}

	works, err := s.packRepo.GetWorks(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to expand pack: %w", err)
	}

	return works, nil
}

func (s *catalogService) DeletePack(ctx context.Context, packID int) error {
	return s.setPackDeleted(ctx, packID, true)
}

func (s *catalogService) RestorePack(ctx context.Context, packID int) error {
	return s.setPackDeleted(ctx, packID, false)
}

func (s *catalogService) setPackDeleted(ctx context.Context, packID int, deleted bool) error {
	pack, err := s.packRepo.GetByID(ctx, packID)
	if err != nil {
		return fmt.Errorf("failed to get pack: %w", err)
	}
	if pack == nil {
		return ErrPackNotFound
	}

	if err := s.packRepo.SetDeleted(ctx, packID, deleted); err != nil {
		return fmt.Errorf("failed to update pack: %w", err)
	}

	s.logger.Info().
		Int("pack_id", packID).
		Bool("deleted", deleted).
		Msg("Pack delete flag updated")

	return nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
