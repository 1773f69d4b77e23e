package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
)

// ─── Mocks ──────────────────────────────────────────────────────────────────

type mockFormStore struct {
	forms map[int]*model.Form
}

func (m *mockFormStore) GetByID(_ context.Context, id int) (*model.Form, error) {
	f, ok := m.forms[id]
	if !ok {
		return nil, repository.ErrFormNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockFormStore) ListByBranch(_ context.Context, branch string, activeOnly bool) ([]model.Form, error) {
	var out []model.Form
	for _, f := range m.forms {
		if f.Branch != branch {
			continue
		}
		if activeOnly && !f.Active {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

func (m *mockFormStore) ListDueBetween(_ context.Context, from, to time.Time) ([]model.Form, error) {
	var out []model.Form
	for _, f := range m.forms {
		if f.Active && f.Deadline != nil && f.Deadline.After(from) && f.Deadline.Before(to) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *mockFormStore) Create(_ context.Context, f *model.Form) error {
	f.ID = len(m.forms) + 1
	m.forms[f.ID] = f
	return nil
}

func (m *mockFormStore) UpdateMeta(_ context.Context, f *model.Form) error {
	if _, ok := m.forms[f.ID]; !ok {
		return repository.ErrFormNotFound
	}
	m.forms[f.ID] = f
	return nil
}

func (m *mockFormStore) Delete(_ context.Context, id int) error {
	delete(m.forms, id)
	return nil
}

type responseKey struct{ formID, studentID int }

type mockResponseStore struct {
	responses map[responseKey]*model.FormResponse
	nextID    int
	updated   map[int]map[int]model.AnswerValue
}

func (m *mockResponseStore) Create(_ context.Context, resp *model.FormResponse) error {
	key := responseKey{resp.FormID, resp.StudentID}
	if _, exists := m.responses[key]; exists {
		return repository.ErrDuplicateResponse
	}
	m.nextID++
	resp.ID = m.nextID
	resp.SubmittedAt = time.Now()
	m.responses[key] = resp
	return nil
}

func (m *mockResponseStore) UpdateAnswers(_ context.Context, id int, answers map[int]model.AnswerValue) error {
	for _, resp := range m.responses {
		if resp.ID == id {
			resp.Answers = answers
			if m.updated == nil {
				m.updated = map[int]map[int]model.AnswerValue{}
			}
			m.updated[id] = answers
			return nil
		}
	}
	return repository.ErrResponseNotFound
}

func (m *mockResponseStore) GetByID(_ context.Context, id int) (*model.FormResponse, error) {
	for _, resp := range m.responses {
		if resp.ID == id {
			return resp, nil
		}
	}
	return nil, repository.ErrResponseNotFound
}

func (m *mockResponseStore) GetByFormAndStudent(_ context.Context, formID, studentID int) (*model.FormResponse, error) {
	resp, ok := m.responses[responseKey{formID, studentID}]
	if !ok {
		return nil, repository.ErrResponseNotFound
	}
	return resp, nil
}

func (m *mockResponseStore) ListByForm(_ context.Context, formID int) ([]model.FormResponseWithStudent, error) {
	var out []model.FormResponseWithStudent
	for _, resp := range m.responses {
		if resp.FormID == formID {
			out = append(out, model.FormResponseWithStudent{FormResponse: *resp})
		}
	}
	return out, nil
}

func (m *mockResponseStore) RespondedStudentIDs(_ context.Context, formID int) (map[int]struct{}, error) {
	out := make(map[int]struct{})
	for key := range m.responses {
		if key.formID == formID {
			out[key.studentID] = struct{}{}
		}
	}
	return out, nil
}

func (m *mockResponseStore) CountByForm(_ context.Context, formID int) (int, error) {
	n := 0
	for key := range m.responses {
		if key.formID == formID {
			n++
		}
	}
	return n, nil
}

type mockRosterStore struct {
	students []model.Student
}

func (m *mockRosterStore) ListAllByBranch(_ context.Context, branch string, filter model.UnsubmittedFilter) ([]model.Student, error) {
	var out []model.Student
	for _, s := range m.students {
		if s.Branch != branch {
			continue
		}
		if filter.Year != 0 && s.Year != filter.Year {
			continue
		}
		if filter.Section != "" && s.Section != filter.Section {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type mockFileStore struct {
	moved map[string]string
}

func (m mockFileStore) PromoteFormFiles(int, int, []string) (map[string]string, error) {
	if m.moved == nil {
		return map[string]string{}, nil
	}
	return m.moved, nil
}
func (mockFileStore) RemoveFormDir(int) error { return nil }

type mockNotifier struct {
	events []string
}

func (m *mockNotifier) NotifyBranch(_ context.Context, _, event string, _ interface{}) {
	m.events = append(m.events, event)
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

func testForm(deadline *time.Time) *model.Form {
	if deadline == nil {
		future := time.Now().Add(24 * time.Hour)
		deadline = &future
	}
	return &model.Form{
		ID:     1,
		Title:  "Orientation Feedback",
		Branch: "CSE",
		Fields: []model.Field{
			{ID: 1, Label: "Full Name", Type: model.FieldTypeText, Required: true},
			{ID: 2, Label: "Attended", Type: model.FieldTypeRadio, Required: true, Options: []string{"Yes", "No"}},
			{ID: 3, Label: "Interests", Type: model.FieldTypeCheckbox, Options: []string{"AI", "Web", "IoT"}},
		},
		Deadline: deadline,
		Active:   true,
	}
}

func newTestFormService(form *model.Form, roster []model.Student) (*FormService, *mockResponseStore, *mockNotifier) {
	forms := &mockFormStore{forms: map[int]*model.Form{}}
	if form != nil {
		forms.forms[form.ID] = form
	}
	responses := &mockResponseStore{responses: map[responseKey]*model.FormResponse{}}
	notifier := &mockNotifier{}
	svc := NewFormService(forms, responses, &mockRosterStore{students: roster}, mockFileStore{}, notifier, zerolog.Nop())
	return svc, responses, notifier
}

func validAnswers() map[int]model.AnswerValue {
	return map[int]model.AnswerValue{
		1: model.SingleAnswer("Ananya Reddy"),
		2: model.SingleAnswer("Yes"),
		3: model.MultiAnswer([]string{"AI", "IoT"}),
	}
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestSubmitHappyPath(t *testing.T) {
	svc, responses, notifier := newTestFormService(testForm(nil), nil)

	resp, err := svc.Submit(context.Background(), 1, 10, "CSE", validAnswers())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.ID == 0 {
		t.Error("response ID not assigned")
	}
	if len(responses.responses) != 1 {
		t.Errorf("stored responses = %d, want 1", len(responses.responses))
	}
	if len(notifier.events) != 1 || notifier.events[0] != "form.response.submitted" {
		t.Errorf("notifier events = %v, want one submission event", notifier.events)
	}
}

func TestSubmitAfterDeadline(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	svc, _, _ := newTestFormService(testForm(&past), nil)

	if _, err := svc.Submit(context.Background(), 1, 10, "CSE", validAnswers()); !errors.Is(err, ErrFormClosed) {
		t.Errorf("Submit error = %v, want ErrFormClosed", err)
	}
}

func TestSubmitDuplicate(t *testing.T) {
	svc, _, notifier := newTestFormService(testForm(nil), nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, 1, 10, "CSE", validAnswers()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := svc.Submit(ctx, 1, 10, "CSE", validAnswers()); !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("second Submit error = %v, want ErrDuplicateSubmission", err)
	}
	if len(notifier.events) != 1 {
		t.Errorf("notifier fired %d times, want 1", len(notifier.events))
	}
}

func TestSubmitMissingRequired(t *testing.T) {
	svc, _, _ := newTestFormService(testForm(nil), nil)

	answers := map[int]model.AnswerValue{
		1: model.SingleAnswer("Ananya Reddy"),
		// field 2 (Attended, required) left out
	}
	_, err := svc.Submit(context.Background(), 1, 10, "CSE", answers)

	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("Submit error = %v, want MissingFieldsError", err)
	}
	if len(missing.Labels) != 1 || missing.Labels[0] != "Attended" {
		t.Errorf("missing labels = %v, want [Attended]", missing.Labels)
	}
}

func TestSubmitWrongBranch(t *testing.T) {
	svc, _, _ := newTestFormService(testForm(nil), nil)

	if _, err := svc.Submit(context.Background(), 1, 10, "ECE", validAnswers()); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("Submit error = %v, want ErrFormNotFound for foreign branch", err)
	}
}

func TestSubmitInactiveForm(t *testing.T) {
	form := testForm(nil)
	form.Active = false
	svc, _, _ := newTestFormService(form, nil)

	if _, err := svc.Submit(context.Background(), 1, 10, "CSE", validAnswers()); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("Submit error = %v, want ErrFormNotFound for inactive form", err)
	}
}

func TestValidateAnswers(t *testing.T) {
	form := testForm(nil)

	tests := []struct {
		name    string
		answers map[int]model.AnswerValue
		wantErr error
	}{
		{
			"unknown field",
			map[int]model.AnswerValue{99: model.SingleAnswer("x")},
			ErrUnknownField,
		},
		{
			"invalid option",
			map[int]model.AnswerValue{
				1: model.SingleAnswer("N"),
				2: model.SingleAnswer("Maybe"),
			},
			ErrInvalidOption,
		},
		{
			"invalid option in multi",
			map[int]model.AnswerValue{
				1: model.SingleAnswer("N"),
				2: model.SingleAnswer("Yes"),
				3: model.MultiAnswer([]string{"AI", "Blockchain"}),
			},
			ErrInvalidOption,
		},
		{
			"single value for checkbox",
			map[int]model.AnswerValue{
				1: model.SingleAnswer("N"),
				2: model.SingleAnswer("Yes"),
				3: model.SingleAnswer("AI"),
			},
			ErrAnswerShape,
		},
		{
			"multi value for radio",
			map[int]model.AnswerValue{
				1: model.SingleAnswer("N"),
				2: model.MultiAnswer([]string{"Yes"}),
			},
			ErrAnswerShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateAnswers(form, tt.answers); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAnswers error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("optional field may be absent", func(t *testing.T) {
		answers := map[int]model.AnswerValue{
			1: model.SingleAnswer("N"),
			2: model.SingleAnswer("No"),
		}
		if err := ValidateAnswers(form, answers); err != nil {
			t.Errorf("ValidateAnswers: %v", err)
		}
	})
}

func TestSubmitPersistsPromotedFilePaths(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	form := &model.Form{
		ID:     1,
		Title:  "Internship Proof",
		Branch: "CSE",
		Fields: []model.Field{
			{ID: 1, Label: "Company", Type: model.FieldTypeText, Required: true},
			{ID: 2, Label: "Offer Letter", Type: model.FieldTypeFile, Required: true},
		},
		Deadline: &future,
		Active:   true,
	}

	forms := &mockFormStore{forms: map[int]*model.Form{1: form}}
	responses := &mockResponseStore{responses: map[responseKey]*model.FormResponse{}}
	files := mockFileStore{moved: map[string]string{
		"forms/1/temp/offer.pdf": "forms/1/1/offer.pdf",
	}}
	svc := NewFormService(forms, responses, &mockRosterStore{}, files, &mockNotifier{}, zerolog.Nop())

	answers := map[int]model.AnswerValue{
		1: model.SingleAnswer("Acme Corp"),
		2: model.SingleAnswer("forms/1/temp/offer.pdf"),
	}
	resp, err := svc.Submit(context.Background(), 1, 10, "CSE", answers)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := resp.Answers[2].Value; got != "forms/1/1/offer.pdf" {
		t.Errorf("returned file path = %q, want promoted path", got)
	}

	// the rewrite must reach the store, not just the returned struct
	persisted, ok := responses.updated[resp.ID]
	if !ok {
		t.Fatal("promoted answers were not written back to the store")
	}
	if got := persisted[2].Value; got != "forms/1/1/offer.pdf" {
		t.Errorf("stored file path = %q, want promoted path", got)
	}
}

func TestUnsubmittedPartition(t *testing.T) {
	roster := []model.Student{
		{ID: 10, RollNumber: "20CS300001", Branch: "CSE"},
		{ID: 11, RollNumber: "20CS300002", Branch: "CSE"},
		{ID: 12, RollNumber: "20CS300003", Branch: "CSE"},
		{ID: 20, RollNumber: "20EC300001", Branch: "ECE"},
	}
	svc, _, _ := newTestFormService(testForm(nil), roster)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, 1, 11, "CSE", validAnswers()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, unsubmitted, err := svc.Unsubmitted(ctx, 1, "CSE", model.UnsubmittedFilter{})
	if err != nil {
		t.Fatalf("Unsubmitted: %v", err)
	}

	got := make(map[int]bool, len(unsubmitted))
	for _, s := range unsubmitted {
		got[s.ID] = true
		if s.Branch != "CSE" {
			t.Errorf("student %d from branch %s leaked into the set", s.ID, s.Branch)
		}
	}
	if got[11] {
		t.Error("responded student 11 still in unsubmitted set")
	}
	if !got[10] || !got[12] {
		t.Errorf("unsubmitted set = %v, want students 10 and 12", got)
	}
}

func TestListForStudentFlags(t *testing.T) {
	svc, _, _ := newTestFormService(testForm(nil), nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, 1, 10, "CSE", validAnswers()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	views, err := svc.ListForStudent(ctx, "CSE", 10)
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if !views[0].Submitted {
		t.Error("form should be flagged submitted for student 10")
	}

	views, err = svc.ListForStudent(ctx, "CSE", 11)
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if views[0].Submitted {
		t.Error("form should not be flagged submitted for student 11")
	}
}

func TestCreatePublishesDraft(t *testing.T) {
	svc, _, _ := newTestFormService(nil, nil)

	deadline := time.Now().Add(48 * time.Hour)
	req := &model.CreateFormRequest{
		Title:    "Hackathon Registration",
		Deadline: &deadline,
		Fields: []model.FieldDefinition{
			{Label: "Team Name", Type: model.FieldTypeText, Required: true},
			{Label: "Track", Type: model.FieldTypeSelect, Required: true, Options: []string{"AI", "Web"}},
		},
	}

	form, err := svc.Create(context.Background(), req, "CSE", 5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if form.ID == 0 {
		t.Error("form ID not assigned")
	}
	if form.Fields[0].ID != 1 || form.Fields[1].ID != 2 {
		t.Errorf("field ids = %d,%d, want 1,2", form.Fields[0].ID, form.Fields[1].ID)
	}

	req.Deadline = nil
	if _, err := svc.Create(context.Background(), req, "CSE", 5); !errors.Is(err, ErrDeadlineRequired) {
		t.Errorf("Create error = %v, want ErrDeadlineRequired", err)
	}

	req.Deadline = &deadline
	req.Fields[1].Options = nil
	if _, err := svc.Create(context.Background(), req, "CSE", 5); !errors.Is(err, ErrOptionsRequired) {
		t.Errorf("Create error = %v, want ErrOptionsRequired", err)
	}
}
