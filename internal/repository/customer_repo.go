package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ttthanh1411/gym/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}


const customerColumns = `
	id, name, email, password_hash, role, status, phone, address,
	height_cm::float8, weight_kg::float8, gender, created_at, updated_at
`

type CustomerListFilter struct {
	Keyword string
	Limit   int
	Offset  int
}

type UpdateCustomerInput struct {
	Name    string
	Phone   string
	Address string
	Gender  *string
	Role    int
	Status  int
}

type CustomerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, password_hash, role, status, phone, address, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(
		ctx,
		query,
		customer.Name,
		customer.Email,
		customer.PasswordHash,
		customer.Role,
		customer.Status,
		customer.Phone,
		customer.Address,
		customer.Gender,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE lower(email) = lower($1)`
	return scanCustomer(r.db.QueryRow(ctx, query, strings.TrimSpace(email)))
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.db.QueryRow(ctx, query, id))
}

func (r *CustomerRepository) List(ctx context.Context, filter CustomerListFilter) ([]models.Customer, int, error) {
	keyword := "%" + strings.ToLower(strings.TrimSpace(filter.Keyword)) + "%"

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM customers
		WHERE lower(name) LIKE $1 OR lower(email) LIKE $1
	`
	if err := r.db.QueryRow(ctx, countQuery, keyword).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE lower(name) LIKE $1 OR lower(email) LIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, keyword, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := make([]models.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *customer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *CustomerRepository) ListByRole(ctx context.Context, role int) ([]models.CustomerOption, error) {
	query := `
		SELECT id, name
		FROM customers
		WHERE role = $1 AND status = 1
		ORDER BY name, id
	`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := make([]models.CustomerOption, 0)
	for rows.Next() {
		var option models.CustomerOption
		if err := rows.Scan(&option.Value, &option.Label); err != nil {
			return nil, err
		}
		options = append(options, option)
	}
	return options, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error) {
	query := `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, gender = $5, role = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns
	return scanCustomer(r.db.QueryRow(
		ctx,
		query,
		id,
		input.Name,
		input.Phone,
		input.Address,
		input.Gender,
		input.Role,
		input.Status,
	))
}

func (r *CustomerRepository) UpdateBodyMetrics(ctx context.Context, id uuid.UUID, heightCM, weightKG float64) (*models.Customer, error) {
	query := `
		UPDATE customers
		SET height_cm = $2, weight_kg = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns
	return scanCustomer(r.db.QueryRow(ctx, query, id, heightCM, weightKG))
}

func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var customer models.Customer
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Role,
		&customer.Status,
		&customer.Phone,
		&customer.Address,
		&customer.HeightCM,
		&customer.WeightKG,
		&customer.Gender,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
