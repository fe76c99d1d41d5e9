package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

type AssignedWorkRepository interface {
	// InsertRows writes the batch for one student inside its own
	// transaction. Duplicate (username, pack_id, work_id) triples are
	// silently skipped by the uniqueness constraint; the returned count is
	// the number of rows actually added.
	InsertRows(ctx context.Context, rows []models.AssignedWork) (int, error)
	GetByUser(ctx context.Context, username string) ([]models.AssignedWork, error)
	// GetByUserAndWorks returns the student's rows for any of the given
	// catalog works, across every pack. Used for conflict detection.
	GetByUserAndWorks(ctx context.Context, username string, workIDs []int) ([]models.AssignedWork, error)
	GetByUserAndWork(ctx context.Context, username string, workID int) ([]models.AssignedWork, error)
	// MarkDone completes every row the student has for the work, whatever
	// pack it was assigned under. Returns the number of rows updated.
	MarkDone(ctx context.Context, username string, workID int, score, incorrect string) (int, error)
	MarkComplete(ctx context.Context, username string, packID, workID int) (int, error)
	// OverrideRow is the unconstrained fine-tune update. Nil score/incorrect
	// leave the current value in place.
	OverrideRow(ctx context.Context, username string, packID, workID int, status models.WorkStatus, score, incorrect *string) (int, error)
	IncrementViews(ctx context.Context, username string, packID, workID int) (int, error)
	// PromoteFuture flips the student's oldest Future rows to Assigned,
	// ordered by pack then rank. Returns the number promoted.
	PromoteFuture(ctx context.Context, username string, batchSize int) (int, error)
}

type assignedWorkRepository struct {
	*PostgresRepository
}

func NewAssignedWorkRepository(db *sql.DB, logger zerolog.Logger) AssignedWorkRepository {
	return &assignedWorkRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const assignedColumns = `username, pack_id, work_id, work_name, work_link, work_level, pack_desc,
			work_rank, work_status, work_score, incorrect, work_views, last_updated`

func scanAssignedWork(row interface{ Scan(...interface{}) error }, aw *models.AssignedWork) error {
	return row.Scan(
		&aw.Username,
		&aw.PackID,
		&aw.WorkID,
		&aw.WorkName,
		&aw.WorkLink,
		&aw.WorkLevel,
		&aw.PackDesc,
		&aw.WorkRank,
		&aw.WorkStatus,
		&aw.WorkScore,
		&aw.Incorrect,
		&aw.WorkViews,
		&aw.LastUpdated,
	)
}

func (r *assignedWorkRepository) InsertRows(ctx context.Context, rows []models.AssignedWork) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO assigned_works (` + assignedColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (username, pack_id, work_id) DO NOTHING
	`

	added := 0
	for _, row := range rows {
		res, err := tx.ExecContext(ctx, query,
			row.Username,
			row.PackID,
			row.WorkID,
			row.WorkName,
			row.WorkLink,
			row.WorkLevel,
			row.PackDesc,
			row.WorkRank,
			row.WorkStatus,
			row.WorkScore,
			row.Incorrect,
			row.WorkViews,
			row.LastUpdated,
		)
		if err != nil {
			return 0, err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return added, nil
}

func (r *assignedWorkRepository) GetByUser(ctx context.Context, username string) ([]models.AssignedWork, error) {
	query := `
		SELECT ` + assignedColumns + `
		FROM assigned_works
		WHERE username = $1
		ORDER BY pack_id, work_rank
	`

	return r.queryRows(ctx, query, username)
}

func (r *assignedWorkRepository) GetByUserAndWorks(ctx context.Context, username string, workIDs []int) ([]models.AssignedWork, error) {
	if len(workIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + assignedColumns + `
		FROM assigned_works
		WHERE username = $1 AND work_id = ANY($2)
		ORDER BY pack_id, work_rank
	`

	return r.queryRows(ctx, query, username, pq.Array(workIDs))
}

func (r *assignedWorkRepository) GetByUserAndWork(ctx context.Context, username string, workID int) ([]models.AssignedWork, error) {
	query := `
		SELECT ` + assignedColumns + `
		FROM assigned_works
		WHERE username = $1 AND work_id = $2
		ORDER BY pack_id
	`

	return r.queryRows(ctx, query, username, workID)
}

func (r *assignedWorkRepository) queryRows(ctx context.Context, query string, args ...interface{}) ([]models.AssignedWork, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.AssignedWork
	for rows.Next() {
		var aw models.AssignedWork
		if err := scanAssignedWork(rows, &aw); err != nil {
			return nil, err
		}
		result = append(result, aw)
	}

	return result, rows.Err()
}

func (r *assignedWorkRepository) MarkDone(ctx context.Context, username string, workID int, score, incorrect string) (int, error) {
	query := `
		UPDATE assigned_works
		SET work_status = $1, work_score = $2, incorrect = $3, last_updated = $4
		WHERE username = $5 AND work_id = $6
	`

	res, err := r.db.ExecContext(ctx, query,
		models.StatusDone, score, incorrect, time.Now(), username, workID,
	)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *assignedWorkRepository) MarkComplete(ctx context.Context, username string, packID, workID int) (int, error) {
	query := `
		UPDATE assigned_works
		SET work_status = $1, work_score = 'Complete', incorrect = '-', last_updated = $2
		WHERE username = $3 AND pack_id = $4 AND work_id = $5
	`

	res, err := r.db.ExecContext(ctx, query, models.StatusDone, time.Now(), username, packID, workID)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *assignedWorkRepository) OverrideRow(ctx context.Context, username string, packID, workID int, status models.WorkStatus, score, incorrect *string) (int, error) {
	query := `
		UPDATE assigned_works
		SET work_status = $1,
			work_score = COALESCE($2, work_score),
			incorrect = COALESCE($3, incorrect),
			last_updated = $4
		WHERE username = $5 AND pack_id = $6 AND work_id = $7
	`

	res, err := r.db.ExecContext(ctx, query, status, score, incorrect, time.Now(), username, packID, workID)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *assignedWorkRepository) IncrementViews(ctx context.Context, username string, packID, workID int) (int, error) {
	query := `
		UPDATE assigned_works
		SET work_views = work_views + 1, last_updated = $1
		WHERE username = $2 AND pack_id = $3 AND work_id = $4
	`

	res, err := r.db.ExecContext(ctx, query, time.Now(), username, packID, workID)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *assignedWorkRepository) PromoteFuture(ctx context.Context, username string, batchSize int) (int, error) {
	query := `
		UPDATE assigned_works
		SET work_status = $1, last_updated = $2
		WHERE (username, pack_id, work_id) IN (
			SELECT username, pack_id, work_id
			FROM assigned_works
			WHERE username = $3 AND work_status = $4
			ORDER BY pack_id, work_rank
			LIMIT $5
		)
	`

	res, err := r.db.ExecContext(ctx, query,
		models.StatusAssigned, time.Now(), username, models.StatusFuture, batchSize,
	)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	return int(affected), err
}
