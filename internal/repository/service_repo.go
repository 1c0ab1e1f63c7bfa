package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
)

type CreateServiceInput struct {
	Name        string
	Description *string
	Price       float64
}

type ServiceRepository struct {
	db DBTX
}

func NewServiceRepository(db DBTX) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, input CreateServiceInput) (*models.Service, error) {
	query := `
		INSERT INTO services (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, price::float8
	`
	var service models.Service
	err := r.db.QueryRow(ctx, query, input.Name, input.Description, input.Price).
		Scan(&service.ID, &service.Name, &service.Description, &service.Price)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	query := `SELECT id, name, description, price::float8 FROM services WHERE id = $1`
	var service models.Service
	err := r.db.QueryRow(ctx, query, id).
		Scan(&service.ID, &service.Name, &service.Description, &service.Price)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) List(ctx context.Context) ([]models.Service, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, price::float8 FROM services ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]models.Service, 0)
	for rows.Next() {
		var service models.Service
		if err := rows.Scan(&service.ID, &service.Name, &service.Description, &service.Price); err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}
