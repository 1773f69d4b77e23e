package model

import "time"

// FieldType enumerates the input types a form field can take.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
)

// Valid reports whether the field type is one of the supported inputs.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeNumber,
		FieldTypeDate, FieldTypeFile, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeSelect:
		return true
	}
	return false
}

// HasOptions reports whether the field type requires a non-empty options list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeRadio, FieldTypeCheckbox, FieldTypeSelect:
		return true
	}
	return false
}

// MultiValued reports whether the field accepts more than one answer value.
func (t FieldType) MultiValued() bool {
	return t == FieldTypeCheckbox
}

// Field is a single question on a form. IDs are unique within the form and
// never reused after removal.
type Field struct {
	ID       int       `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// Form is an admin-defined data collection form scoped to one branch.
// Fields are stored in creation order.
type Form struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Branch      string     `json:"branch"`
	CreatedBy   int        `json:"created_by"`
	Fields      []Field    `json:"fields"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Closed reports whether the form no longer accepts submissions at the given
// instant. The deadline instant itself is closed. A nil deadline never closes
// the form.
func (f *Form) Closed(now time.Time) bool {
	return f.Deadline != nil && !now.Before(*f.Deadline)
}

// FieldByID returns the field with the given id, or nil if it was removed or
// never existed.
func (f *Form) FieldByID(id int) *Field {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i]
		}
	}
	return nil
}

// MissingRequired returns the labels of required fields that have no usable
// answer in the given set, in field order.
func (f *Form) MissingRequired(answers map[int]AnswerValue) []string {
	var missing []string
	for _, fld := range f.Fields {
		if !fld.Required {
			continue
		}
		v, ok := answers[fld.ID]
		if !ok || v.IsEmpty() {
			missing = append(missing, fld.Label)
		}
	}
	return missing
}

// FieldDefinition is the request shape for one field when creating a form.
type FieldDefinition struct {
	Label    string    `json:"label" binding:"required,min=1,max=255"`
	Type     FieldType `json:"type" binding:"required"`
	Required bool      `json:"required"`
	Options  []string  `json:"options" binding:"omitempty,dive,min=1,max=255"`
}

// CreateFormRequest is the admin payload for publishing a new form.
type CreateFormRequest struct {
	Title       string            `json:"title" binding:"required,min=3,max=255"`
	Description string            `json:"description" binding:"omitempty,max=2000"`
	Deadline    *time.Time        `json:"deadline" binding:"required"`
	Fields      []FieldDefinition `json:"fields" binding:"required,min=1,dive"`
}

// UpdateFormRequest edits form metadata. Field definitions are immutable once
// the form is created; only title, description, deadline and active state move.
type UpdateFormRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=255"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Deadline    *time.Time `json:"deadline" binding:"required"`
	Active      *bool      `json:"active" binding:"omitempty"`
}

// UnsubmittedFilter narrows the unsubmitted-students listing.
type UnsubmittedFilter struct {
	Year    int
	Section string
}
