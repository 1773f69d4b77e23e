package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sritlabs/sat-backend/internal/model"
)

// DashboardRepository handles admin dashboard and analytics data access.
// All queries are scoped to a branch.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for a branch dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context, branch string) (totalStudents, totalCertificates, pendingCertificates, activeForms int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students WHERE branch = $1),
			(SELECT COUNT(*) FROM certificates c JOIN students s ON c.student_id = s.id WHERE s.branch = $1),
			(SELECT COUNT(*) FROM certificates c JOIN students s ON c.student_id = s.id WHERE s.branch = $1 AND c.status = 'Pending'),
			(SELECT COUNT(*) FROM forms WHERE branch = $1 AND active = TRUE)`,
		branch,
	).Scan(&totalStudents, &totalCertificates, &pendingCertificates, &activeForms)
	return
}

// GetCertificateStatusCounts retrieves the distribution of a branch's
// certificates by review status.
func (r *DashboardRepository) GetCertificateStatusCounts(ctx context.Context, branch string) (map[model.CertificateStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.status, COUNT(*)
		 FROM certificates c JOIN students s ON c.student_id = s.id
		 WHERE s.branch = $1
		 GROUP BY c.status`, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.CertificateStatus]int)
	for rows.Next() {
		var status model.CertificateStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// EventTypeCount is one slice of the certificates-by-event-type breakdown.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int    `json:"count"`
}

// GetEventTypeCounts retrieves how many certificates each event type has
// accumulated for a branch.
func (r *DashboardRepository) GetEventTypeCounts(ctx context.Context, branch string) ([]EventTypeCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.event_type, COUNT(*)
		 FROM certificates c JOIN students s ON c.student_id = s.id
		 WHERE s.branch = $1
		 GROUP BY c.event_type
		 ORDER BY COUNT(*) DESC`, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []EventTypeCount
	for rows.Next() {
		var ec EventTypeCount
		if err := rows.Scan(&ec.EventType, &ec.Count); err != nil {
			return nil, err
		}
		counts = append(counts, ec)
	}
	if counts == nil {
		counts = []EventTypeCount{}
	}
	return counts, rows.Err()
}

// MonthlyUploadCount is one month of certificate upload volume.
type MonthlyUploadCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

// GetMonthlyUploads retrieves per-month upload counts for the trailing N
// months, oldest first.
func (r *DashboardRepository) GetMonthlyUploads(ctx context.Context, branch string, months int) ([]MonthlyUploadCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('month', c.uploaded_at) AS month, COUNT(*)
		 FROM certificates c JOIN students s ON c.student_id = s.id
		 WHERE s.branch = $1 AND c.uploaded_at > NOW() - ($2 || ' months')::interval
		 GROUP BY month
		 ORDER BY month`, branch, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []MonthlyUploadCount
	for rows.Next() {
		var mc MonthlyUploadCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, mc)
	}
	if counts == nil {
		counts = []MonthlyUploadCount{}
	}
	return counts, rows.Err()
}

// TopStudent is one row of the approved-certificates leaderboard.
type TopStudent struct {
	StudentID     int    `json:"student_id"`
	Name          string `json:"name"`
	RollNumber    string `json:"roll_number"`
	ApprovedCount int    `json:"approved_count"`
}

// GetTopStudents retrieves the branch's students with the most approved
// certificates.
func (r *DashboardRepository) GetTopStudents(ctx context.Context, branch string, limit int) ([]TopStudent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.roll_number, COUNT(c.id) AS approved_count
		 FROM students s
		 JOIN certificates c ON c.student_id = s.id AND c.status = 'Approved'
		 WHERE s.branch = $1
		 GROUP BY s.id, s.name, s.roll_number
		 ORDER BY approved_count DESC, s.roll_number
		 LIMIT $2`, branch, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []TopStudent
	for rows.Next() {
		var t TopStudent
		if err := rows.Scan(&t.StudentID, &t.Name, &t.RollNumber, &t.ApprovedCount); err != nil {
			return nil, err
		}
		students = append(students, t)
	}
	if students == nil {
		students = []TopStudent{}
	}
	return students, rows.Err()
}
