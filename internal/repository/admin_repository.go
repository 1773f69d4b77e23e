package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sritlabs/sat-backend/internal/model"
)

var (
	ErrAdminNotFound  = errors.New("admin not found")
	ErrDuplicateAdmin = errors.New("admin with this email or employee id already exists")
)

const adminColumns = `id, employee_id, name, email, branch, super_admin, password_hash, created_at, updated_at`

// AdminRepository handles admin data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	a := &model.Admin{}
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Name, &a.Email, &a.Branch,
		&a.SuperAdmin, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

// GetByEmail retrieves an admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
}

// List retrieves all admins ordered by branch then name.
func (r *AdminRepository) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY branch, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Name, &a.Email, &a.Branch,
			&a.SuperAdmin, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (employee_id, name, email, branch, super_admin, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		a.EmployeeID, a.Name, a.Email, a.Branch, a.SuperAdmin, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAdmin
		}
		return err
	}
	return nil
}

// Update modifies an admin's basic info (excluding password).
func (r *AdminRepository) Update(ctx context.Context, a *model.Admin) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admins SET name = $1, email = $2, branch = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		a.Name, a.Email, a.Branch, a.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAdmin
		}
		return err
	}
	return nil
}

// UpdatePassword updates an admin's password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes an admin by ID. Super admin rows are never deleted.
func (r *AdminRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM admins WHERE id = $1 AND super_admin = FALSE`, id)
	return err
}
