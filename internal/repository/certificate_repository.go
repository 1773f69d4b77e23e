package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sritlabs/sat-backend/internal/model"
)

var ErrCertificateNotFound = errors.New("certificate not found")

const certificateColumns = `id, student_id, event_name, event_type, event_date, description, file_path, status, remarks, reviewed_by, uploaded_at, reviewed_at`

// CertificateRepository handles certificate data access.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

func scanCertificate(row pgx.Row) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := row.Scan(&c.ID, &c.StudentID, &c.EventName, &c.EventType, &c.EventDate,
		&c.Description, &c.FilePath, &c.Status, &c.Remarks, &c.ReviewedBy,
		&c.UploadedAt, &c.ReviewedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a certificate by ID.
func (r *CertificateRepository) GetByID(ctx context.Context, id int) (*model.Certificate, error) {
	return scanCertificate(r.pool.QueryRow(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = $1`, id))
}

// ListByStudent retrieves a student's certificates, newest first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Certificate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE student_id = $1 ORDER BY uploaded_at DESC`,
		studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.StudentID, &c.EventName, &c.EventType, &c.EventDate,
			&c.Description, &c.FilePath, &c.Status, &c.Remarks, &c.ReviewedBy,
			&c.UploadedAt, &c.ReviewedAt); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// ListFiltered retrieves certificates joined with student info matching the
// filter, newest first, with pagination. Branch is always required so admins
// only see their own department.
func (r *CertificateRepository) ListFiltered(ctx context.Context, filter model.CertificateFilter, limit, offset int) ([]model.CertificateWithStudent, int, error) {
	where := ` WHERE s.branch = $1`
	args := []interface{}{filter.Branch}
	argIdx := 2

	add := func(clause string, val interface{}) {
		where += ` AND ` + clause + ` $` + strconv.Itoa(argIdx)
		args = append(args, val)
		argIdx++
	}

	if filter.Status != "" {
		add(`c.status =`, filter.Status)
	}
	if filter.EventType != "" {
		add(`c.event_type =`, filter.EventType)
	}
	if filter.Year > 0 {
		add(`s.year =`, filter.Year)
	}
	if filter.Section != "" {
		add(`s.section =`, filter.Section)
	}
	if filter.DateFrom != nil {
		add(`c.event_date >=`, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add(`c.event_date <=`, *filter.DateTo)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM certificates c JOIN students s ON c.student_id = s.id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT c.id, c.student_id, c.event_name, c.event_type, c.event_date, c.description,
	                 c.file_path, c.status, c.remarks, c.reviewed_by, c.uploaded_at, c.reviewed_at,
	                 s.name, s.roll_number, s.branch, s.section, s.year
	          FROM certificates c JOIN students s ON c.student_id = s.id` + where +
		` ORDER BY c.uploaded_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var certs []model.CertificateWithStudent
	for rows.Next() {
		var c model.CertificateWithStudent
		if err := rows.Scan(&c.ID, &c.StudentID, &c.EventName, &c.EventType, &c.EventDate,
			&c.Description, &c.FilePath, &c.Status, &c.Remarks, &c.ReviewedBy,
			&c.UploadedAt, &c.ReviewedAt,
			&c.StudentName, &c.RollNumber, &c.Branch, &c.Section, &c.Year); err != nil {
			return nil, 0, err
		}
		certs = append(certs, c)
	}
	return certs, total, rows.Err()
}

// ListAllFiltered retrieves every matching certificate without pagination.
// Used by report exports.
func (r *CertificateRepository) ListAllFiltered(ctx context.Context, filter model.CertificateFilter) ([]model.CertificateWithStudent, error) {
	certs, _, err := r.ListFiltered(ctx, filter, 1<<30, 0)
	return certs, err
}

// Create inserts a new certificate in Pending status.
func (r *CertificateRepository) Create(ctx context.Context, c *model.Certificate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO certificates (student_id, event_name, event_type, event_date, description, file_path, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, uploaded_at`,
		c.StudentID, c.EventName, c.EventType, c.EventDate, c.Description, c.FilePath, c.Status,
	).Scan(&c.ID, &c.UploadedAt)
}

// UpdateStatus records a review decision for a single certificate.
func (r *CertificateRepository) UpdateStatus(ctx context.Context, id int, status model.CertificateStatus, remarks string, reviewerID int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE certificates
		 SET status = $1, remarks = $2, reviewed_by = $3, reviewed_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		status, remarks, reviewerID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCertificateNotFound
	}
	return nil
}

// UpdateStatusBulk reviews several certificates at once, constrained to the
// given branch so an admin cannot touch another department's uploads.
func (r *CertificateRepository) UpdateStatusBulk(ctx context.Context, ids []int, branch string, status model.CertificateStatus, remarks string, reviewerID int) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE certificates c
		 SET status = $1, remarks = $2, reviewed_by = $3, reviewed_at = CURRENT_TIMESTAMP
		 FROM students s
		 WHERE c.student_id = s.id AND s.branch = $4 AND c.id = ANY($5)`,
		status, remarks, reviewerID, branch, ids,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Delete removes a certificate row. The caller is responsible for removing
// the stored file.
func (r *CertificateRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCertificateNotFound
	}
	return nil
}
