package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
)

type DonePackRepository interface {
	Set(ctx context.Context, username string, packID int) error
	Delete(ctx context.Context, username string, packID int) (int, error)
	GetPackIDs(ctx context.Context, username string) (map[int]bool, error)
}

type donePackRepository struct {
	*PostgresRepository
}

func NewDonePackRepository(db *sql.DB, logger zerolog.Logger) DonePackRepository {
	return &donePackRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *donePackRepository) Set(ctx context.Context, username string, packID int) error {
	// Повторная пометка не ошибка.
	query := `
		INSERT INTO done_packs (username, pack_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (username, pack_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, username, packID, time.Now())
	return err
}

func (r *donePackRepository) Delete(ctx context.Context, username string, packID int) (int, error) {
	query := `DELETE FROM done_packs WHERE username = $1 AND pack_id = $2`

	res, err := r.db.ExecContext(ctx, query, username, packID)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *donePackRepository) GetPackIDs(ctx context.Context, username string) (map[int]bool, error) {
	query := `SELECT pack_id FROM done_packs WHERE username = $1`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int]bool)
	for rows.Next() {
		var packID int
		if err := rows.Scan(&packID); err != nil {
			return nil, err
		}
		result[packID] = true
	}

	return result, rows.Err()
}
