package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sritlabs/sat-backend/internal/model"
)

var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrDuplicateStudent    = errors.New("student with this email or roll number already exists")
	ErrDuplicateEmail      = errors.New("student with this email already exists")
	ErrDuplicateRollNumber = errors.New("student with this roll number already exists")
)

const studentColumns = `id, roll_number, name, email, phone, gender, branch, section, year, password_hash, created_at, updated_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	err := row.Scan(&s.ID, &s.RollNumber, &s.Name, &s.Email, &s.Phone, &s.Gender,
		&s.Branch, &s.Section, &s.Year, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

// GetByEmail retrieves a student by their unique email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email = $1`, email))
}

// GetByIdentifier retrieves a student by email or roll number.
func (r *StudentRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email = $1 OR roll_number = $1`, identifier))
}

// ListByBranch retrieves students of a branch with pagination and optional
// year/section filters, ordered by roll number.
func (r *StudentRepository) ListByBranch(ctx context.Context, branch string, filter model.UnsubmittedFilter, limit, offset int) ([]model.Student, int, error) {
	where := ` WHERE branch = $1`
	args := []interface{}{branch}
	argIdx := 2

	if filter.Year > 0 {
		where += ` AND year = $` + strconv.Itoa(argIdx)
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.Section != "" {
		where += ` AND section = $` + strconv.Itoa(argIdx)
		args = append(args, filter.Section)
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + studentColumns + ` FROM students` + where +
		` ORDER BY roll_number LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.RollNumber, &s.Name, &s.Email, &s.Phone, &s.Gender,
			&s.Branch, &s.Section, &s.Year, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// ListAllByBranch retrieves every student of a branch matching the filter,
// unpaginated. Used for the unsubmitted set and report exports.
func (r *StudentRepository) ListAllByBranch(ctx context.Context, branch string, filter model.UnsubmittedFilter) ([]model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE branch = $1`
	args := []interface{}{branch}
	argIdx := 2

	if filter.Year > 0 {
		query += ` AND year = $` + strconv.Itoa(argIdx)
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.Section != "" {
		query += ` AND section = $` + strconv.Itoa(argIdx)
		args = append(args, filter.Section)
	}
	query += ` ORDER BY roll_number`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.RollNumber, &s.Name, &s.Email, &s.Phone, &s.Gender,
			&s.Branch, &s.Section, &s.Year, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (roll_number, name, email, phone, gender, branch, section, year, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		s.RollNumber, s.Name, s.Email, s.Phone, s.Gender, s.Branch, s.Section, s.Year, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "students_email_key":
				return ErrDuplicateEmail
			case "students_roll_number_key":
				return ErrDuplicateRollNumber
			}
			return ErrDuplicateStudent
		}
		return err
	}
	return nil
}

// UpdateProfile modifies a student's editable profile fields.
func (r *StudentRepository) UpdateProfile(ctx context.Context, s *model.Student) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET name = $1, phone = $2, section = $3, year = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		s.Name, s.Phone, s.Section, s.Year, s.ID,
	)
	return err
}

// UpdatePassword updates a student's password hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes a student by ID.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}
