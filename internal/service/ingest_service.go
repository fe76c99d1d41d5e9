package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
	"github.com/RubachokBoss/mx-portal/internal/repository"
	"github.com/RubachokBoss/mx-portal/internal/service/integration"
	"github.com/RubachokBoss/mx-portal/internal/service/mailparse"
	"github.com/RubachokBoss/mx-portal/internal/service/storage"
	"github.com/RubachokBoss/mx-portal/pkg/utils"
)

// incorrectMaxLen is the column limit for the missed-question summary.
const incorrectMaxLen = 100

// IngestService turns inbound notification mails into Done rows. It never
// fails the webhook: unparseable or unmatchable deliveries are logged,
// archived and discarded, and redelivery of the same mail is harmless.
type IngestService interface {
	ProcessNotification(ctx context.Context, sender, subject, bodyHTML, bodyPlain string) models.ParsedResult
	GetLastNotification(ctx context.Context) (*models.InboundNotification, error)
	// GetLastNotificationBody fetches the verbatim archived mail of the most
	// recent delivery from object storage.
	GetLastNotificationBody(ctx context.Context) ([]byte, error)
}

type ingestService struct {
	workRepo         repository.WorkRepository
	assignedRepo     repository.AssignedWorkRepository
	notificationRepo repository.NotificationRepository
	archive          storage.ArchiveStore
	events           integration.EventPublisher
	logger           zerolog.Logger
}

func NewIngestService(
	workRepo repository.WorkRepository,
	assignedRepo repository.AssignedWorkRepository,
	notificationRepo repository.NotificationRepository,
	archive storage.ArchiveStore,
	events integration.EventPublisher,
	logger zerolog.Logger,
) IngestService {
	return &ingestService{
		workRepo:         workRepo,
		assignedRepo:     assignedRepo,
		notificationRepo: notificationRepo,
		archive:          archive,
		events:           events,
		logger:           logger,
	}
}

func (s *ingestService) ProcessNotification(ctx context.Context, sender, subject, bodyHTML, bodyPlain string) models.ParsedResult {
	body := bodyHTML
	if body == "" {
		body = bodyPlain
	}

	result := mailparse.Parse(subject, body)

	rowsDone := s.applyResult(ctx, result)

	s.archiveNotification(ctx, sender, subject, body, result, rowsDone)

	return result
}

// applyResult is the reconciliation step: resolve the parsed identifier
// against the catalog and complete every matching row the student has,
// across all packs. Returns the number of rows marked Done.
func (s *ingestService) applyResult(ctx context.Context, result models.ParsedResult) int {
	if result.IsInvalid() || result.User == "" {
		s.logger.Info().
			Str("id", result.ID).
			Str("user", result.User).
			Msg("Notification is not a usable result; discarding")
		return 0
	}

	workID, err := s.resolveWorkID(ctx, result.ID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("id", result.ID).
			Msg("Could not resolve work id; discarding result")
		return 0
	}

	score := utils.Truncate(result.Score, incorrectMaxLen)
	incorrect := utils.Truncate(result.Incorrect, incorrectMaxLen)

	rowsDone, err := s.assignedRepo.MarkDone(ctx, result.User, workID, score, incorrect)
	if err != nil {
		s.logger.Error().Err(err).
			Str("user", result.User).
			Int("work_id", workID).
			Msg("Failed to mark rows done")
		return 0
	}

	if rowsDone == 0 {
		s.logger.Warn().
			Str("user", result.User).
			Int("work_id", workID).
			Msg("No assigned rows matched result; discarding")
		return 0
	}

	s.logger.Info().
		Str("user", result.User).
		Int("work_id", workID).
		Str("score", score).
		Int("rows_done", rowsDone).
		Msg("Result recorded")

	if s.events != nil {
		event := &models.ResultRecordedEvent{
			Username:  result.User,
			WorkID:    workID,
			Score:     score,
			RowsDone:  rowsDone,
			Timestamp: time.Now().Unix(),
		}
		if err := s.events.PublishResultRecorded(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish result recorded event")
		}
	}

	return rowsDone
}

func (s *ingestService) resolveWorkID(ctx context.Context, id string) (int, error) {
	if workID, err := strconv.Atoi(id); err == nil {
		return workID, nil
	}

	work, err := s.workRepo.GetByLegacyID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to lookup legacy id: %w", err)
	}
	if work == nil {
		return 0, fmt.Errorf("unknown legacy id %q", id)
	}

	return work.WorkID, nil
}

// archiveNotification stores the delivery verbatim. Both the object write
// and the archive row are best-effort; losing either never fails ingestion.
func (s *ingestService) archiveNotification(ctx context.Context, sender, subject, body string, result models.ParsedResult, rowsDone int) {
	id := uuid.New().String()

	objectKey := ""
	if s.archive != nil {
		payload := fmt.Sprintf("From: %s\r\nSubject: %s\r\n\r\n%s", sender, subject, body)
		key, err := s.archive.Put(ctx, "notifications/"+id+".eml", []byte(payload))
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to archive notification body")
		} else {
			objectKey = key
		}
	}

	notification := &models.InboundNotification{
		ID:         id,
		Sender:     utils.Truncate(sender, 255),
		Subject:    utils.Truncate(subject, 1024),
		ParsedID:   utils.Truncate(result.ID, 64),
		ParsedUser: utils.Truncate(result.User, 100),
		Score:      utils.Truncate(result.Score, incorrectMaxLen),
		Incorrect:  utils.Truncate(result.Incorrect, incorrectMaxLen),
		RowsDone:   rowsDone,
		ObjectKey:  objectKey,
		ReceivedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error().Err(err).Msg("Failed to store notification archive row")
	}
}

func (s *ingestService) GetLastNotification(ctx context.Context) (*models.InboundNotification, error) {
	notification, err := s.notificationRepo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last notification: %w", err)
	}

	return notification, nil
}

func (s *ingestService) GetLastNotificationBody(ctx context.Context) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrNoArchivedBody
	}

	notification, err := s.notificationRepo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last notification: %w", err)
	}
	if notification == nil || notification.ObjectKey == "" {
		return nil, ErrNoArchivedBody
	}

	payload, err := s.archive.Get(ctx, notification.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archived body: %w", err)
	}

	return payload, nil
}
