package service

import (
	"errors"
	"testing"
	"time"

	"github.com/sritlabs/sat-backend/internal/model"
)

func TestFormDraftAddField(t *testing.T) {
	d := NewFormDraft()

	id, err := d.AddField("Full Name", model.FieldTypeText, true, nil)
	if err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	id, err = d.AddField("Branch", model.FieldTypeSelect, true, []string{"CSE", "ECE"})
	if err != nil {
		t.Fatalf("AddField select: %v", err)
	}
	if id != 2 {
		t.Errorf("second id = %d, want 2", id)
	}
}

func TestFormDraftAddFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		typ     model.FieldType
		options []string
		wantErr error
	}{
		{"empty label", "  ", model.FieldTypeText, nil, ErrEmptyLabel},
		{"bad type", "Q", "slider", nil, ErrInvalidFieldType},
		{"radio without options", "Q", model.FieldTypeRadio, nil, ErrOptionsRequired},
		{"text with options", "Q", model.FieldTypeText, []string{"A"}, ErrOptionsNotAllowed},
		{"duplicate options", "Q", model.FieldTypeCheckbox, []string{"A", "A"}, ErrDuplicateOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewFormDraft()
			if _, err := d.AddField(tt.label, tt.typ, false, tt.options); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddField error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormDraftIDsNeverReused(t *testing.T) {
	d := NewFormDraft()
	d.AddField("A", model.FieldTypeText, false, nil)
	id2, _ := d.AddField("B", model.FieldTypeText, false, nil)

	d.RemoveField(id2)
	if len(d.Fields()) != 1 {
		t.Fatalf("fields after removal = %d, want 1", len(d.Fields()))
	}

	// Removing an absent id is a no-op.
	d.RemoveField(id2)
	d.RemoveField(42)
	if len(d.Fields()) != 1 {
		t.Errorf("fields after repeated removal = %d, want 1", len(d.Fields()))
	}

	id3, _ := d.AddField("C", model.FieldTypeText, false, nil)
	if id3 != 3 {
		t.Errorf("id after removal = %d, want 3 (removed ids must not come back)", id3)
	}
}

func TestFormDraftFinalize(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	t.Run("no fields", func(t *testing.T) {
		d := NewFormDraft()
		if _, err := d.Finalize("T", "", "CSE", 1, &future, now); !errors.Is(err, ErrNoFields) {
			t.Errorf("Finalize error = %v, want ErrNoFields", err)
		}
	})

	t.Run("blank title", func(t *testing.T) {
		d := NewFormDraft()
		d.AddField("A", model.FieldTypeText, false, nil)
		if _, err := d.Finalize("   ", "", "CSE", 1, &future, now); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("Finalize error = %v, want ErrEmptyTitle", err)
		}
	})

	t.Run("no deadline", func(t *testing.T) {
		d := NewFormDraft()
		d.AddField("A", model.FieldTypeText, false, nil)
		if _, err := d.Finalize("T", "", "CSE", 1, nil, now); !errors.Is(err, ErrDeadlineRequired) {
			t.Errorf("Finalize error = %v, want ErrDeadlineRequired", err)
		}
	})

	t.Run("deadline at finalize instant", func(t *testing.T) {
		d := NewFormDraft()
		d.AddField("A", model.FieldTypeText, false, nil)
		instant := now
		if _, err := d.Finalize("T", "", "CSE", 1, &instant, now); !errors.Is(err, ErrDeadlineInPast) {
			t.Errorf("Finalize error = %v, want ErrDeadlineInPast", err)
		}
	})

	t.Run("deadline in past", func(t *testing.T) {
		d := NewFormDraft()
		d.AddField("A", model.FieldTypeText, false, nil)
		past := now.Add(-time.Hour)
		if _, err := d.Finalize("T", "", "CSE", 1, &past, now); !errors.Is(err, ErrDeadlineInPast) {
			t.Errorf("Finalize error = %v, want ErrDeadlineInPast", err)
		}
	})

	t.Run("ok", func(t *testing.T) {
		d := NewFormDraft()
		d.AddField("A", model.FieldTypeText, true, nil)
		future := now.Add(time.Hour)
		form, err := d.Finalize(" Title ", "desc", "CSE", 7, &future, now)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if form.Title != "Title" {
			t.Errorf("Title = %q, want trimmed %q", form.Title, "Title")
		}
		if !form.Active {
			t.Error("new form should be active")
		}
		if form.CreatedBy != 7 {
			t.Errorf("CreatedBy = %d, want 7", form.CreatedBy)
		}
		if len(form.Fields) != 1 {
			t.Fatalf("Fields len = %d, want 1", len(form.Fields))
		}
	})
}
