package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
	"github.com/RubachokBoss/mx-portal/internal/repository"
)

type QueueSort string

const (
	// SortByDesc orders groups by pack description, then pack id, then rank.
	SortByDesc QueueSort = "desc"
	// SortByID orders groups by pack id, then rank.
	SortByID QueueSort = "id"
)

type ViewService interface {
	// StudentQueue returns the student's assigned rows grouped by pack for
	// display. Packs consisting solely of videos are dropped.
	StudentQueue(ctx context.Context, username string, queueSort QueueSort) ([]models.PackView, error)
}

type viewService struct {
	assignedRepo repository.AssignedWorkRepository
	donePackRepo repository.DonePackRepository
	logger       zerolog.Logger
}

func NewViewService(assignedRepo repository.AssignedWorkRepository, donePackRepo repository.DonePackRepository, logger zerolog.Logger) ViewService {
	return &viewService{
		assignedRepo: assignedRepo,
		donePackRepo: donePackRepo,
		logger:       logger,
	}
}

func (s *viewService) StudentQueue(ctx context.Context, username string, queueSort QueueSort) ([]models.PackView, error) {
	rows, err := s.assignedRepo.GetByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get assigned works: %w", err)
	}

	donePacks, err := s.donePackRepo.GetPackIDs(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get done packs: %w", err)
	}

	return GroupByPack(rows, queueSort, donePacks), nil
}

// GroupByPack groups assigned rows into display PackViews. Rows marked
// X-Delete are excluded, groups keep first-seen order under the requested
// sort, and a group where every work is a video is dropped entirely.
func GroupByPack(rows []models.AssignedWork, queueSort QueueSort, donePacks map[int]bool) []models.PackView {
	active := make([]models.AssignedWork, 0, len(rows))
	for _, row := range rows {
		if row.WorkStatus == models.StatusXDelete {
			continue
		}
		active = append(active, row)
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if queueSort == SortByDesc {
			if a.PackDesc != b.PackDesc {
				return a.PackDesc < b.PackDesc
			}
		}
		if a.PackID != b.PackID {
			return a.PackID < b.PackID
		}
		return a.WorkRank < b.WorkRank
	})

	var (
		views   []models.PackView
		indexOf = make(map[int]int)
	)
	for _, row := range active {
		idx, ok := indexOf[row.PackID]
		if !ok {
			idx = len(views)
			indexOf[row.PackID] = idx
			views = append(views, models.PackView{
				PackID:      row.PackID,
				PackDesc:    row.PackDesc,
				DisplayDesc: models.DisplayPackDesc(row.PackDesc),
				Done:        donePacks[row.PackID],
			})
		}
		views[idx].Works = append(views[idx].Works, row)
	}

	// Пак из одних видео не показываем.
	filtered := views[:0]
	for _, view := range views {
		if allVideos(view.Works) {
			continue
		}
		filtered = append(filtered, view)
	}

	return filtered
}

func allVideos(works []models.AssignedWork) bool {
	for _, work := range works {
		if !models.IsVideoName(work.WorkName) {
			return false
		}
	}
	return true
}
