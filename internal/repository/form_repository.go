package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sritlabs/sat-backend/internal/model"
)

var ErrFormNotFound = errors.New("form not found")

// FormRepository handles form data access. Field definitions are stored as a
// JSONB array in creation order.
type FormRepository struct {
	pool *pgxpool.Pool
}

// NewFormRepository creates a new FormRepository.
func NewFormRepository(pool *pgxpool.Pool) *FormRepository {
	return &FormRepository{pool: pool}
}

func scanForm(row pgx.Row) (*model.Form, error) {
	f := &model.Form{}
	var rawFields []byte
	err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Branch, &f.CreatedBy,
		&rawFields, &f.Deadline, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawFields, &f.Fields); err != nil {
		return nil, err
	}
	return f, nil
}

// GetByID retrieves a form by ID.
func (r *FormRepository) GetByID(ctx context.Context, id int) (*model.Form, error) {
	return scanForm(r.pool.QueryRow(ctx,
		`SELECT id, title, description, branch, created_by, fields, deadline, active, created_at, updated_at
		 FROM forms WHERE id = $1`, id))
}

// ListByBranch retrieves forms for a branch, newest first. When activeOnly is
// set, inactive forms are excluded (student-facing listings).
func (r *FormRepository) ListByBranch(ctx context.Context, branch string, activeOnly bool) ([]model.Form, error) {
	query := `SELECT id, title, description, branch, created_by, fields, deadline, active, created_at, updated_at
	          FROM forms WHERE branch = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []model.Form
	for rows.Next() {
		var f model.Form
		var rawFields []byte
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.Branch, &f.CreatedBy,
			&rawFields, &f.Deadline, &f.Active, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawFields, &f.Fields); err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// ListDueBetween retrieves active forms whose deadline falls in [from, to).
// Used by the deadline reminder sweep.
func (r *FormRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]model.Form, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, branch, created_by, fields, deadline, active, created_at, updated_at
		 FROM forms
		 WHERE active = TRUE AND deadline IS NOT NULL AND deadline >= $1 AND deadline < $2
		 ORDER BY deadline`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []model.Form
	for rows.Next() {
		var f model.Form
		var rawFields []byte
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.Branch, &f.CreatedBy,
			&rawFields, &f.Deadline, &f.Active, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawFields, &f.Fields); err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// Create inserts a new form with its field definitions.
func (r *FormRepository) Create(ctx context.Context, f *model.Form) error {
	rawFields, err := json.Marshal(f.Fields)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO forms (title, description, branch, created_by, fields, deadline, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		f.Title, f.Description, f.Branch, f.CreatedBy, rawFields, f.Deadline, f.Active,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// UpdateMeta modifies a form's title, description, deadline and active state.
// Field definitions are immutable after creation.
func (r *FormRepository) UpdateMeta(ctx context.Context, f *model.Form) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE forms SET title = $1, description = $2, deadline = $3, active = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		f.Title, f.Description, f.Deadline, f.Active, f.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFormNotFound
	}
	return nil
}

// Delete removes a form. Responses cascade at the database level.
func (r *FormRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFormNotFound
	}
	return nil
}
