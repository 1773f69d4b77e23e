package model

import (
	"reflect"
	"testing"
	"time"
)

func TestFieldTypeValid(t *testing.T) {
	valid := []FieldType{
		FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeNumber,
		FieldTypeDate, FieldTypeFile, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeSelect,
	}
	for _, ft := range valid {
		if !ft.Valid() {
			t.Errorf("%s should be valid", ft)
		}
	}
	for _, ft := range []FieldType{"", "slider", "TEXT", "drop-down"} {
		if ft.Valid() {
			t.Errorf("%q should not be valid", ft)
		}
	}
}

func TestFieldTypeHasOptions(t *testing.T) {
	for _, ft := range []FieldType{FieldTypeRadio, FieldTypeCheckbox, FieldTypeSelect} {
		if !ft.HasOptions() {
			t.Errorf("%s should require options", ft)
		}
	}
	for _, ft := range []FieldType{FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeNumber, FieldTypeDate, FieldTypeFile} {
		if ft.HasOptions() {
			t.Errorf("%s should not take options", ft)
		}
	}
}

func TestFieldTypeMultiValued(t *testing.T) {
	if !FieldTypeCheckbox.MultiValued() {
		t.Error("checkbox should be multi-valued")
	}
	for _, ft := range []FieldType{FieldTypeRadio, FieldTypeSelect, FieldTypeText} {
		if ft.MultiValued() {
			t.Errorf("%s should be single-valued", ft)
		}
	}
}

func TestFormClosed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	open := &Form{Deadline: nil}
	if open.Closed(now) {
		t.Error("form without deadline should never close")
	}

	upcoming := &Form{Deadline: &future}
	if upcoming.Closed(now) {
		t.Error("form with future deadline should be open")
	}

	expired := &Form{Deadline: &past}
	if !expired.Closed(now) {
		t.Error("form past deadline should be closed")
	}

	exact := &Form{Deadline: &now}
	if !exact.Closed(now) {
		t.Error("form should be closed at the deadline instant")
	}
}

func TestFormFieldByID(t *testing.T) {
	f := &Form{Fields: []Field{
		{ID: 1, Label: "Name"},
		{ID: 3, Label: "Track"},
	}}

	if got := f.FieldByID(3); got == nil || got.Label != "Track" {
		t.Errorf("FieldByID(3) = %v, want Track", got)
	}
	if got := f.FieldByID(2); got != nil {
		t.Errorf("FieldByID(2) = %v, want nil for removed id", got)
	}
}

func TestFormMissingRequired(t *testing.T) {
	f := &Form{Fields: []Field{
		{ID: 1, Label: "Name", Required: true},
		{ID: 2, Label: "Remarks"},
		{ID: 3, Label: "Track", Required: true},
		{ID: 4, Label: "Interests", Type: FieldTypeCheckbox, Required: true},
	}}

	got := f.MissingRequired(map[int]AnswerValue{
		1: SingleAnswer(""),                  // present but empty
		4: MultiAnswer([]string{}),           // empty list
		2: SingleAnswer("optional, ignored"), // not required
	})
	want := []string{"Name", "Track", "Interests"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingRequired = %v, want %v (field order)", got, want)
	}

	got = f.MissingRequired(map[int]AnswerValue{
		1: SingleAnswer("Ananya"),
		3: SingleAnswer("AI"),
		4: MultiAnswer([]string{"Web"}),
	})
	if len(got) != 0 {
		t.Errorf("MissingRequired = %v, want empty", got)
	}
}
