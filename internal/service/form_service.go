package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
)

// Form submission errors.
var (
	ErrFormNotFound        = errors.New("form not found")
	ErrFormClosed          = errors.New("form deadline has passed")
	ErrDuplicateSubmission = errors.New("response already submitted")
	ErrUnknownField        = errors.New("answer references an unknown field")
	ErrInvalidOption       = errors.New("answer is not one of the field's options")
	ErrAnswerShape         = errors.New("answer shape does not match the field type")
)

// MissingFieldsError reports required fields left unanswered, by label in
// field order.
type MissingFieldsError struct {
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Labels, ", ")
}

// FormStore is the form persistence surface the service needs.
type FormStore interface {
	GetByID(ctx context.Context, id int) (*model.Form, error)
	ListByBranch(ctx context.Context, branch string, activeOnly bool) ([]model.Form, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]model.Form, error)
	Create(ctx context.Context, f *model.Form) error
	UpdateMeta(ctx context.Context, f *model.Form) error
	Delete(ctx context.Context, id int) error
}

// ResponseStore is the response persistence surface the service needs.
// Create must be atomic: the first write for a (form, student) pair wins and
// later ones fail with repository.ErrDuplicateResponse.
type ResponseStore interface {
	Create(ctx context.Context, resp *model.FormResponse) error
	UpdateAnswers(ctx context.Context, id int, answers map[int]model.AnswerValue) error
	GetByID(ctx context.Context, id int) (*model.FormResponse, error)
	GetByFormAndStudent(ctx context.Context, formID, studentID int) (*model.FormResponse, error)
	ListByForm(ctx context.Context, formID int) ([]model.FormResponseWithStudent, error)
	RespondedStudentIDs(ctx context.Context, formID int) (map[int]struct{}, error)
	CountByForm(ctx context.Context, formID int) (int, error)
}

// RosterStore lists the students a form addresses.
type RosterStore interface {
	ListAllByBranch(ctx context.Context, branch string, filter model.UnsubmittedFilter) ([]model.Student, error)
}

// FormFileStore moves and removes stored form attachments.
type FormFileStore interface {
	PromoteFormFiles(formID, responseID int, tempPaths []string) (map[string]string, error)
	RemoveFormDir(formID int) error
}

// BranchNotifier pushes a live event to admins of a branch.
type BranchNotifier interface {
	NotifyBranch(ctx context.Context, branch, event string, payload interface{})
}

// FormService implements the dynamic form lifecycle: creation from field
// definitions, student submission with validation, response listing and the
// unsubmitted set.
type FormService struct {
	forms     FormStore
	responses ResponseStore
	roster    RosterStore
	files     FormFileStore
	notifier  BranchNotifier
	log       zerolog.Logger
}

// NewFormService creates a new FormService.
func NewFormService(forms FormStore, responses ResponseStore, roster RosterStore, files FormFileStore, notifier BranchNotifier, log zerolog.Logger) *FormService {
	return &FormService{
		forms:     forms,
		responses: responses,
		roster:    roster,
		files:     files,
		notifier:  notifier,
		log:       log.With().Str("component", "form_service").Logger(),
	}
}

// Create validates the field definitions and publishes a new form for the
// admin's branch.
func (s *FormService) Create(ctx context.Context, req *model.CreateFormRequest, branch string, adminID int) (*model.Form, error) {
	d := NewFormDraft()
	for _, def := range req.Fields {
		if _, err := d.AddField(def.Label, def.Type, def.Required, def.Options); err != nil {
			return nil, err
		}
	}

	form, err := d.Finalize(req.Title, req.Description, branch, adminID, req.Deadline, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.forms.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}

	s.log.Info().Int("form_id", form.ID).Str("branch", branch).Int("fields", len(form.Fields)).Msg("form published")
	return form, nil
}

// Get retrieves a form, restricted to the given branch.
func (s *FormService) Get(ctx context.Context, formID int, branch string) (*model.Form, error) {
	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		if errors.Is(err, repository.ErrFormNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	if form.Branch != branch {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// ListForAdmin retrieves all of a branch's forms with response counts.
func (s *FormService) ListForAdmin(ctx context.Context, branch string) ([]FormSummary, error) {
	return s.list(ctx, branch, false)
}

// ListForStudent retrieves the active forms for a student's branch, flagging
// the ones they have already answered.
func (s *FormService) ListForStudent(ctx context.Context, branch string, studentID int) ([]StudentFormView, error) {
	forms, err := s.forms.ListByBranch(ctx, branch, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]StudentFormView, 0, len(forms))
	for i := range forms {
		_, err := s.responses.GetByFormAndStudent(ctx, forms[i].ID, studentID)
		submitted := err == nil
		if err != nil && !errors.Is(err, repository.ErrResponseNotFound) {
			return nil, err
		}
		views = append(views, StudentFormView{
			Form:      forms[i],
			Closed:    forms[i].Closed(now),
			Submitted: submitted,
		})
	}
	return views, nil
}

// FormSummary is a form with its response count, for admin listings.
type FormSummary struct {
	model.Form
	ResponseCount int `json:"response_count"`
}

// StudentFormView is a form as seen by one student.
type StudentFormView struct {
	model.Form
	Closed    bool `json:"closed"`
	Submitted bool `json:"submitted"`
}

func (s *FormService) list(ctx context.Context, branch string, activeOnly bool) ([]FormSummary, error) {
	forms, err := s.forms.ListByBranch(ctx, branch, activeOnly)
	if err != nil {
		return nil, err
	}

	summaries := make([]FormSummary, 0, len(forms))
	for i := range forms {
		count, err := s.responses.CountByForm(ctx, forms[i].ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, FormSummary{Form: forms[i], ResponseCount: count})
	}
	return summaries, nil
}

// UpdateMeta edits a form's title, description, deadline and active flag.
// Field definitions never change after creation.
func (s *FormService) UpdateMeta(ctx context.Context, formID int, branch string, req *model.UpdateFormRequest) (*model.Form, error) {
	form, err := s.Get(ctx, formID, branch)
	if err != nil {
		return nil, err
	}

	form.Title = req.Title
	form.Description = req.Description
	form.Deadline = req.Deadline
	if req.Active != nil {
		form.Active = *req.Active
	}

	if err := s.forms.UpdateMeta(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Delete removes a form, its responses (database cascade) and its stored
// attachments.
func (s *FormService) Delete(ctx context.Context, formID int, branch string) error {
	if _, err := s.Get(ctx, formID, branch); err != nil {
		return err
	}
	if err := s.forms.Delete(ctx, formID); err != nil {
		return err
	}
	if err := s.files.RemoveFormDir(formID); err != nil {
		s.log.Warn().Err(err).Int("form_id", formID).Msg("failed to remove form uploads")
	}
	return nil
}

// ValidateAnswers checks a submission's answers against the form's fields.
// Unknown field ids, answers outside a choice field's options and mismatched
// shapes are rejected; missing required fields come back as a
// MissingFieldsError listing the labels in field order.
func ValidateAnswers(form *model.Form, answers map[int]model.AnswerValue) error {
	for id, ans := range answers {
		fld := form.FieldByID(id)
		if fld == nil {
			return fmt.Errorf("%w: %d", ErrUnknownField, id)
		}
		if ans.IsEmpty() {
			continue
		}
		if fld.Type.MultiValued() != ans.Multi {
			return fmt.Errorf("%w: field %q", ErrAnswerShape, fld.Label)
		}
		if fld.Type.HasOptions() {
			if err := checkOptions(fld, ans); err != nil {
				return err
			}
		}
	}

	if missing := form.MissingRequired(answers); len(missing) > 0 {
		return &MissingFieldsError{Labels: missing}
	}
	return nil
}

func checkOptions(fld *model.Field, ans model.AnswerValue) error {
	allowed := make(map[string]struct{}, len(fld.Options))
	for _, opt := range fld.Options {
		allowed[opt] = struct{}{}
	}

	values := ans.Values
	if !ans.Multi {
		values = []string{ans.Value}
	}
	for _, v := range values {
		if _, ok := allowed[v]; !ok {
			return fmt.Errorf("%w: %q for field %q", ErrInvalidOption, v, fld.Label)
		}
	}
	return nil
}

// Submit records a student's response. The deadline is checked at submission
// time, answers are validated against the field definitions, and the
// database's uniqueness constraint arbitrates concurrent first submissions.
// File-typed answers carry temp paths that are promoted into the response's
// directory once the row exists.
func (s *FormService) Submit(ctx context.Context, formID, studentID int, branch string, answers map[int]model.AnswerValue) (*model.FormResponse, error) {
	form, err := s.Get(ctx, formID, branch)
	if err != nil {
		return nil, err
	}
	if !form.Active {
		return nil, ErrFormNotFound
	}
	if form.Closed(time.Now()) {
		return nil, ErrFormClosed
	}

	if err := ValidateAnswers(form, answers); err != nil {
		return nil, err
	}

	resp := &model.FormResponse{
		FormID:    formID,
		StudentID: studentID,
		Answers:   answers,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		if errors.Is(err, repository.ErrDuplicateResponse) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("create response: %w", err)
	}

	if err := s.promoteFiles(ctx, form, resp); err != nil {
		s.log.Error().Err(err).Int("response_id", resp.ID).Msg("failed to promote form files")
	}

	s.notifier.NotifyBranch(ctx, form.Branch, "form.response.submitted", map[string]interface{}{
		"form_id":     form.ID,
		"form_title":  form.Title,
		"response_id": resp.ID,
		"student_id":  studentID,
	})

	s.log.Info().Int("form_id", formID).Int("student_id", studentID).Int("response_id", resp.ID).Msg("response submitted")
	return resp, nil
}

// promoteFiles moves file answers out of the temp area, rewrites their stored
// paths to the response directory and persists the rewritten answers.
func (s *FormService) promoteFiles(ctx context.Context, form *model.Form, resp *model.FormResponse) error {
	var tempPaths []string
	for id, ans := range resp.Answers {
		fld := form.FieldByID(id)
		if fld != nil && fld.Type == model.FieldTypeFile && !ans.IsEmpty() {
			tempPaths = append(tempPaths, ans.Value)
		}
	}
	if len(tempPaths) == 0 {
		return nil
	}

	moved, err := s.files.PromoteFormFiles(form.ID, resp.ID, tempPaths)
	if err != nil {
		return err
	}
	rewritten := false
	for id, ans := range resp.Answers {
		if newPath, ok := moved[ans.Value]; ok && !ans.Multi {
			resp.Answers[id] = model.SingleAnswer(newPath)
			rewritten = true
		}
	}
	if !rewritten {
		return nil
	}
	if err := s.responses.UpdateAnswers(ctx, resp.ID, resp.Answers); err != nil {
		return fmt.Errorf("persist promoted paths: %w", err)
	}
	return nil
}

// GetResponse retrieves the student's own response to a form.
func (s *FormService) GetResponse(ctx context.Context, formID, studentID int, branch string) (*model.FormResponse, error) {
	if _, err := s.Get(ctx, formID, branch); err != nil {
		return nil, err
	}
	resp, err := s.responses.GetByFormAndStudent(ctx, formID, studentID)
	if errors.Is(err, repository.ErrResponseNotFound) {
		return nil, ErrFormNotFound
	}
	return resp, err
}

// ResponseFilePath resolves a response attachment for the form's branch
// admin, returning the storage-relative path. The response must belong to the
// form, and the filename is reduced to its base so path segments cannot reach
// outside the response directory.
func (s *FormService) ResponseFilePath(ctx context.Context, formID, responseID int, branch, filename string) (string, error) {
	if _, err := s.Get(ctx, formID, branch); err != nil {
		return "", err
	}

	resp, err := s.responses.GetByID(ctx, responseID)
	if errors.Is(err, repository.ErrResponseNotFound) {
		return "", ErrFormNotFound
	}
	if err != nil {
		return "", err
	}
	if resp.FormID != formID {
		return "", ErrFormNotFound
	}

	return filepath.Join("forms", strconv.Itoa(formID), strconv.Itoa(responseID), filepath.Base(filename)), nil
}

// ListResponses retrieves a form's responses for its branch admin, in
// submission order.
func (s *FormService) ListResponses(ctx context.Context, formID int, branch string) (*model.Form, []model.FormResponseWithStudent, error) {
	form, err := s.Get(ctx, formID, branch)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.responses.ListByForm(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	return form, responses, nil
}

// Unsubmitted computes the set difference between the branch roster (after
// optional year/section filters) and the students who have responded,
// ordered by roll number.
func (s *FormService) Unsubmitted(ctx context.Context, formID int, branch string, filter model.UnsubmittedFilter) (*model.Form, []model.Student, error) {
	form, err := s.Get(ctx, formID, branch)
	if err != nil {
		return nil, nil, err
	}

	roster, err := s.roster.ListAllByBranch(ctx, form.Branch, filter)
	if err != nil {
		return nil, nil, err
	}
	responded, err := s.responses.RespondedStudentIDs(ctx, formID)
	if err != nil {
		return nil, nil, err
	}

	unsubmitted := make([]model.Student, 0, len(roster))
	for _, st := range roster {
		if _, ok := responded[st.ID]; !ok {
			unsubmitted = append(unsubmitted, st)
		}
	}
	return form, unsubmitted, nil
}
