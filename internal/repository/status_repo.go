package repository

import (
	"context"

	"github.com/ttthanh1411/gym/internal/models"
)

type StatusRepository struct {
	db DBTX
}

func NewStatusRepository(db DBTX) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) List(ctx context.Context) ([]models.Status, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name FROM statuses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]models.Status, 0, 4)
	for rows.Next() {
		var status models.Status
		if err := rows.Scan(&status.ID, &status.Code, &status.Name); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

func (r *StatusRepository) GetByCode(ctx context.Context, code models.StatusCode) (*models.Status, error) {
	var status models.Status
	err := r.db.QueryRow(ctx, `SELECT id, code, name FROM statuses WHERE code = $1`, string(code)).
		Scan(&status.ID, &status.Code, &status.Name)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
