package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

type PackRepository interface {
	// Create inserts the pack and its ordered contents in one transaction
	// and fills in the generated pack_id.
	Create(ctx context.Context, pack *models.WorkPack, workIDs []int) error
	// Update replaces the description, area and full ordered contents and
	// bumps last_updated.
	Update(ctx context.Context, pack *models.WorkPack, workIDs []int) error
	GetByID(ctx context.Context, id int) (*models.WorkPack, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.PackWithStats, int, error)
	// GetWorks expands the pack into catalog items ordered by position.
	GetWorks(ctx context.Context, packID int) ([]models.WorkItem, error)
	SetDeleted(ctx context.Context, packID int, deleted bool) error
}

type packRepository struct {
	*PostgresRepository
}

func NewPackRepository(db *sql.DB, logger zerolog.Logger) PackRepository {
	return &packRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *packRepository) Create(ctx context.Context, pack *models.WorkPack, workIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO packs (pack_desc, broad_area, is_deleted, last_updated)
		VALUES ($1, $2, FALSE, $3)
		RETURNING pack_id
	`

	if err := tx.QueryRowContext(ctx, query, pack.PackDesc, pack.BroadArea, pack.LastUpdated).Scan(&pack.PackID); err != nil {
		return err
	}

	if err := insertPackItems(ctx, tx, pack.PackID, workIDs); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *packRepository) Update(ctx context.Context, pack *models.WorkPack, workIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE packs
		SET pack_desc = $1, broad_area = $2, last_updated = $3
		WHERE pack_id = $4
	`

	if _, err := tx.ExecContext(ctx, query, pack.PackDesc, pack.BroadArea, pack.LastUpdated, pack.PackID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pack_items WHERE pack_id = $1`, pack.PackID); err != nil {
		return err
	}

	if err := insertPackItems(ctx, tx, pack.PackID, workIDs); err != nil {
		return err
	}

	return tx.Commit()
}

func insertPackItems(ctx context.Context, tx *sql.Tx, packID int, workIDs []int) error {
	query := `INSERT INTO pack_items (pack_id, position, work_id) VALUES ($1, $2, $3)`

	for i, workID := range workIDs {
		if _, err := tx.ExecContext(ctx, query, packID, i+1, workID); err != nil {
			return err
		}
	}

	return nil
}

func (r *packRepository) GetByID(ctx context.Context, id int) (*models.WorkPack, error) {
	query := `
		SELECT pack_id, pack_desc, broad_area, is_deleted, last_updated
		FROM packs
		WHERE pack_id = $1
	`

	pack := &models.WorkPack{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pack.PackID,
		&pack.PackDesc,
		&pack.BroadArea,
		&pack.IsDeleted,
		&pack.LastUpdated,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return pack, err
}

func (r *packRepository) GetAll(ctx context.Context, limit, offset int) ([]models.PackWithStats, int, error) {
	countQuery := `SELECT COUNT(*) FROM packs WHERE NOT is_deleted`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			p.pack_id, p.pack_desc, p.broad_area, p.is_deleted, p.last_updated,
			COUNT(pi.work_id) AS total_works
		FROM packs p
		LEFT JOIN pack_items pi ON p.pack_id = pi.pack_id
		WHERE NOT p.is_deleted
		GROUP BY p.pack_id
		ORDER BY p.broad_area, p.pack_desc, p.pack_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var packs []models.PackWithStats
	for rows.Next() {
		var pack models.PackWithStats
		err := rows.Scan(
			&pack.PackID,
			&pack.PackDesc,
			&pack.BroadArea,
			&pack.IsDeleted,
			&pack.LastUpdated,
			&pack.TotalWorks,
		)
		if err != nil {
			return nil, 0, err
		}
		packs = append(packs, pack)
	}

	return packs, total, rows.Err()
}

func (r *packRepository) GetWorks(ctx context.Context, packID int) ([]models.WorkItem, error) {
	query := `
		SELECT w.work_id, w.old_work_id, w.work_name, w.work_link, w.work_level, w.created_at, w.updated_at
		FROM pack_items pi
		JOIN works w ON w.work_id = pi.work_id
		WHERE pi.pack_id = $1
		ORDER BY pi.position
	`

	rows, err := r.db.QueryContext(ctx, query, packID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var works []models.WorkItem
	for rows.Next() {
		var work models.WorkItem
		if err := scanWorkItem(rows, &work); err != nil {
			return nil, err
		}
		works = append(works, work)
	}

	return works, rows.Err()
}

func (r *packRepository) SetDeleted(ctx context.Context, packID int, deleted bool) error {
	query := `UPDATE packs SET is_deleted = $1, last_updated = $2 WHERE pack_id = $3`
	_, err := r.db.ExecContext(ctx, query, deleted, time.Now(), packID)
	return err
}
