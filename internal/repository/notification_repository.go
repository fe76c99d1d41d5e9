package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.InboundNotification) error
	// GetLatest returns the most recently received archive row, or nil when
	// nothing has arrived yet.
	GetLatest(ctx context.Context) (*models.InboundNotification, error)
}

type notificationRepository struct {
	*PostgresRepository
}

func NewNotificationRepository(db *sql.DB, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.InboundNotification) error {
	query := `
		INSERT INTO inbound_notifications
			(id, sender, subject, parsed_id, parsed_user, score, incorrect, rows_done, object_key, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.Sender,
		n.Subject,
		n.ParsedID,
		n.ParsedUser,
		n.Score,
		n.Incorrect,
		n.RowsDone,
		n.ObjectKey,
		n.ReceivedAt,
	)

	return err
}

func (r *notificationRepository) GetLatest(ctx context.Context) (*models.InboundNotification, error) {
	query := `
		SELECT id, sender, subject, parsed_id, parsed_user, score, incorrect, rows_done, object_key, received_at
		FROM inbound_notifications
		ORDER BY received_at DESC
		LIMIT 1
	`

	n := &models.InboundNotification{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&n.ID,
		&n.Sender,
		&n.Subject,
		&n.ParsedID,
		&n.ParsedUser,
		&n.Score,
		&n.Incorrect,
		&n.RowsDone,
		&n.ObjectKey,
		&n.ReceivedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return n, err
}
