package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sritlabs/sat-backend/internal/model"
)

// Form builder errors.
var (
	ErrInvalidFieldType  = errors.New("invalid field type")
	ErrOptionsRequired   = errors.New("options are required for this field type")
	ErrOptionsNotAllowed = errors.New("options are not allowed for this field type")
	ErrDuplicateOption   = errors.New("duplicate option")
	ErrEmptyLabel        = errors.New("field label must not be empty")
	ErrEmptyTitle        = errors.New("form title must not be empty")
	ErrNoFields          = errors.New("a form needs at least one field")
	ErrDeadlineRequired  = errors.New("a form needs a deadline")
	ErrDeadlineInPast    = errors.New("deadline must be in the future")
)

// FormDraft assembles a form's field list before publication. Field ids are
// assigned from a counter that only moves forward, so an id freed by
// RemoveField is never handed out again.
type FormDraft struct {
	fields []model.Field
	nextID int
}

// NewFormDraft creates an empty draft.
func NewFormDraft() *FormDraft {
	return &FormDraft{nextID: 1}
}

// AddField validates and appends a field definition, returning its id.
func (d *FormDraft) AddField(label string, typ model.FieldType, required bool, options []string) (int, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, ErrEmptyLabel
	}
	if !typ.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFieldType, typ)
	}

	if typ.HasOptions() {
		if len(options) == 0 {
			return 0, fmt.Errorf("%w: %s", ErrOptionsRequired, typ)
		}
		seen := make(map[string]struct{}, len(options))
		cleaned := make([]string, 0, len(options))
		for _, opt := range options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				return 0, fmt.Errorf("%w: empty option for field %q", ErrOptionsRequired, label)
			}
			if _, dup := seen[opt]; dup {
				return 0, fmt.Errorf("%w: %q in field %q", ErrDuplicateOption, opt, label)
			}
			seen[opt] = struct{}{}
			cleaned = append(cleaned, opt)
		}
		options = cleaned
	} else if len(options) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrOptionsNotAllowed, typ)
	} else {
		options = nil
	}

	id := d.nextID
	d.nextID++
	d.fields = append(d.fields, model.Field{
		ID:       id,
		Label:    label,
		Type:     typ,
		Required: required,
		Options:  options,
	})
	return id, nil
}

// RemoveField deletes a field from the draft. Removing an id that is not in
// the draft is a no-op. The remaining fields keep their ids and order.
func (d *FormDraft) RemoveField(id int) {
	for i := range d.fields {
		if d.fields[i].ID == id {
			d.fields = append(d.fields[:i], d.fields[i+1:]...)
			return
		}
	}
}

// Fields returns the draft's fields in creation order.
func (d *FormDraft) Fields() []model.Field {
	return d.fields
}

// Finalize freezes the draft into a publishable form. The draft must hold at
// least one field, the title must be non-blank and the deadline is mandatory
// and must lie in the future.
func (d *FormDraft) Finalize(title, description, branch string, createdBy int, deadline *time.Time, now time.Time) (*model.Form, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(d.fields) == 0 {
		return nil, ErrNoFields
	}
	if deadline == nil {
		return nil, ErrDeadlineRequired
	}
	if !deadline.After(now) {
		return nil, ErrDeadlineInPast
	}

	fields := make([]model.Field, len(d.fields))
	copy(fields, d.fields)

	return &model.Form{
		Title:       title,
		Description: strings.TrimSpace(description),
		Branch:      branch,
		CreatedBy:   createdBy,
		Fields:      fields,
		Deadline:    deadline,
		Active:      true,
	}, nil
}
