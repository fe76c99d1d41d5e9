package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

type WorkRepository interface {
	Create(ctx context.Context, work *models.WorkItem) error
	Update(ctx context.Context, work *models.WorkItem) error
	GetByID(ctx context.Context, id int) (*models.WorkItem, error)
	GetByLegacyID(ctx context.Context, alias string) (*models.WorkItem, error)
	// GetByIDs and GetByLegacyIDs do one batch lookup each; absent keys are
	// simply missing from the returned map.
	GetByIDs(ctx context.Context, ids []int) (map[int]models.WorkItem, error)
	GetByLegacyIDs(ctx context.Context, aliases []string) (map[string]models.WorkItem, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.WorkItem, int, error)
}

type workRepository struct {
	*PostgresRepository
}

func NewWorkRepository(db *sql.DB, logger zerolog.Logger) WorkRepository {
	return &workRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const workColumns = `work_id, old_work_id, work_name, work_link, work_level, created_at, updated_at`

func scanWorkItem(row interface{ Scan(...interface{}) error }, work *models.WorkItem) error {
	return row.Scan(
		&work.WorkID,
		&work.OldWorkID,
		&work.WorkName,
		&work.WorkLink,
		&work.WorkLevel,
		&work.CreatedAt,
		&work.UpdatedAt,
	)
}

func (r *workRepository) Create(ctx context.Context, work *models.WorkItem) error {
	query := `
		INSERT INTO works (old_work_id, work_name, work_link, work_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING work_id
	`

	return r.db.QueryRowContext(ctx, query,
		work.OldWorkID,
		work.WorkName,
		work.WorkLink,
		work.WorkLevel,
		work.CreatedAt,
		work.UpdatedAt,
	).Scan(&work.WorkID)
}

func (r *workRepository) Update(ctx context.Context, work *models.WorkItem) error {
	query := `
		UPDATE works
		SET old_work_id = $1, work_name = $2, work_link = $3, work_level = $4, updated_at = $5
		WHERE work_id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		work.OldWorkID,
		work.WorkName,
		work.WorkLink,
		work.WorkLevel,
		work.UpdatedAt,
		work.WorkID,
	)

	return err
}

func (r *workRepository) GetByID(ctx context.Context, id int) (*models.WorkItem, error) {
	query := `SELECT ` + workColumns + ` FROM works WHERE work_id = $1`

	work := &models.WorkItem{}
	err := scanWorkItem(r.db.QueryRowContext(ctx, query, id), work)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return work, err
}

func (r *workRepository) GetByLegacyID(ctx context.Context, alias string) (*models.WorkItem, error) {
	query := `SELECT ` + workColumns + ` FROM works WHERE old_work_id = $1`

	work := &models.WorkItem{}
	err := scanWorkItem(r.db.QueryRowContext(ctx, query, alias), work)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return work, err
}

func (r *workRepository) GetByIDs(ctx context.Context, ids []int) (map[int]models.WorkItem, error) {
	if len(ids) == 0 {
		return map[int]models.WorkItem{}, nil
	}

	query := `SELECT ` + workColumns + ` FROM works WHERE work_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int]models.WorkItem, len(ids))
	for rows.Next() {
		var work models.WorkItem
		if err := scanWorkItem(rows, &work); err != nil {
			return nil, err
		}
		result[work.WorkID] = work
	}

	return result, rows.Err()
}

func (r *workRepository) GetByLegacyIDs(ctx context.Context, aliases []string) (map[string]models.WorkItem, error) {
	if len(aliases) == 0 {
		return map[string]models.WorkItem{}, nil
	}

	query := `SELECT ` + workColumns + ` FROM works WHERE old_work_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(aliases))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]models.WorkItem, len(aliases))
	for rows.Next() {
		var work models.WorkItem
		if err := scanWorkItem(rows, &work); err != nil {
			return nil, err
		}
		if work.OldWorkID != nil {
			result[*work.OldWorkID] = work
		}
	}

	return result, rows.Err()
}

func (r *workRepository) GetAll(ctx context.Context, limit, offset int) ([]models.WorkItem, int, error) {
	countQuery := `SELECT COUNT(*) FROM works`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + workColumns + `
		FROM works
		ORDER BY work_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var works []models.WorkItem
	for rows.Next() {
		var work models.WorkItem
		if err := scanWorkItem(rows, &work); err != nil {
			return nil, 0, err
		}
		works = append(works, work)
	}

	return works, total, rows.Err()
}
