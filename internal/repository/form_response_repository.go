package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sritlabs/sat-backend/internal/model"
)

var (
	ErrResponseNotFound  = errors.New("form response not found")
	ErrDuplicateResponse = errors.New("student has already responded to this form")
)

// FormResponseRepository handles form response data access. Answers are stored
// as a JSONB object keyed by field id. A unique index on (form_id, student_id)
// makes first-write-wins atomic under concurrent submissions.
type FormResponseRepository struct {
	pool *pgxpool.Pool
}

// NewFormResponseRepository creates a new FormResponseRepository.
func NewFormResponseRepository(pool *pgxpool.Pool) *FormResponseRepository {
	return &FormResponseRepository{pool: pool}
}

func marshalAnswers(answers map[int]model.AnswerValue) ([]byte, error) {
	wire := make(map[string]model.AnswerValue, len(answers))
	for id, v := range answers {
		wire[strconv.Itoa(id)] = v
	}
	return json.Marshal(wire)
}

func unmarshalAnswers(raw []byte) (map[int]model.AnswerValue, error) {
	var wire map[string]model.AnswerValue
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	out := make(map[int]model.AnswerValue, len(wire))
	for k, v := range wire {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// Create inserts a response. Returns ErrDuplicateResponse if the student has
// already submitted to this form.
func (r *FormResponseRepository) Create(ctx context.Context, resp *model.FormResponse) error {
	rawAnswers, err := marshalAnswers(resp.Answers)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO form_responses (form_id, student_id, answers)
		 VALUES ($1, $2, $3)
		 RETURNING id, submitted_at`,
		resp.FormID, resp.StudentID, rawAnswers,
	).Scan(&resp.ID, &resp.SubmittedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateResponse
		}
		return err
	}
	return nil
}

// GetByFormAndStudent retrieves the student's response to a form, if any.
func (r *FormResponseRepository) GetByFormAndStudent(ctx context.Context, formID, studentID int) (*model.FormResponse, error) {
	resp := &model.FormResponse{}
	var rawAnswers []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, form_id, student_id, answers, submitted_at
		 FROM form_responses WHERE form_id = $1 AND student_id = $2`,
		formID, studentID,
	).Scan(&resp.ID, &resp.FormID, &resp.StudentID, &rawAnswers, &resp.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResponseNotFound
	}
	if err != nil {
		return nil, err
	}
	resp.Answers, err = unmarshalAnswers(rawAnswers)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetByID retrieves a response by its id.
func (r *FormResponseRepository) GetByID(ctx context.Context, id int) (*model.FormResponse, error) {
	resp := &model.FormResponse{}
	var rawAnswers []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, form_id, student_id, answers, submitted_at
		 FROM form_responses WHERE id = $1`, id,
	).Scan(&resp.ID, &resp.FormID, &resp.StudentID, &rawAnswers, &resp.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResponseNotFound
	}
	if err != nil {
		return nil, err
	}
	resp.Answers, err = unmarshalAnswers(rawAnswers)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateAnswers overwrites the stored answers of a response. Used after file
// answers are promoted from their temp upload paths to their final location.
func (r *FormResponseRepository) UpdateAnswers(ctx context.Context, id int, answers map[int]model.AnswerValue) error {
	rawAnswers, err := marshalAnswers(answers)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE form_responses SET answers = $2 WHERE id = $1`, id, rawAnswers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrResponseNotFound
	}
	return nil
}

// ListByForm retrieves all responses to a form joined with student info,
// ordered by submission time.
func (r *FormResponseRepository) ListByForm(ctx context.Context, formID int) ([]model.FormResponseWithStudent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT fr.id, fr.form_id, fr.student_id, fr.answers, fr.submitted_at,
		        s.name, s.roll_number, s.section, s.year
		 FROM form_responses fr
		 JOIN students s ON fr.student_id = s.id
		 WHERE fr.form_id = $1
		 ORDER BY fr.submitted_at`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.FormResponseWithStudent
	for rows.Next() {
		var resp model.FormResponseWithStudent
		var rawAnswers []byte
		if err := rows.Scan(&resp.ID, &resp.FormID, &resp.StudentID, &rawAnswers, &resp.SubmittedAt,
			&resp.StudentName, &resp.RollNumber, &resp.Section, &resp.Year); err != nil {
			return nil, err
		}
		resp.Answers, err = unmarshalAnswers(rawAnswers)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// RespondedStudentIDs returns the set of student ids that have submitted to
// the form.
func (r *FormResponseRepository) RespondedStudentIDs(ctx context.Context, formID int) (map[int]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id FROM form_responses WHERE form_id = $1`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// CountByForm returns how many responses a form has received.
func (r *FormResponseRepository) CountByForm(ctx context.Context, formID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM form_responses WHERE form_id = $1`, formID).Scan(&count)
	return count, err
}
