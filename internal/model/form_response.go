package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// AnswerValue is one answer to a form field. Single-valued fields carry a
// string; checkbox fields carry an ordered list of selected options. It
// marshals to either a JSON string or a JSON array accordingly.
type AnswerValue struct {
	Value  string
	Values []string
	Multi  bool
}

// SingleAnswer wraps a plain string answer.
func SingleAnswer(v string) AnswerValue {
	return AnswerValue{Value: v}
}

// MultiAnswer wraps a list answer, preserving selection order.
func MultiAnswer(vs []string) AnswerValue {
	return AnswerValue{Values: vs, Multi: true}
}

// IsEmpty reports whether the answer carries no usable value.
func (a AnswerValue) IsEmpty() bool {
	if a.Multi {
		return len(a.Values) == 0
	}
	return a.Value == ""
}

// MarshalJSON encodes single answers as a string and multi answers as an array.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Values == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(a.Values)
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AnswerValue{Value: s}
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err == nil {
		*a = AnswerValue{Values: vs, Multi: true}
		return nil
	}
	return fmt.Errorf("answer value must be a string or an array of strings")
}

// String renders the answer for exports and reminder emails.
func (a AnswerValue) String() string {
	if a.Multi {
		out := ""
		for i, v := range a.Values {
			if i > 0 {
				out += ", "
			}
			out += v
		}
		return out
	}
	return a.Value
}

// FormResponse is one student's submission to a form. The database enforces
// at most one row per (form, student) pair.
type FormResponse struct {
	ID          int                 `json:"id"`
	FormID      int                 `json:"form_id"`
	StudentID   int                 `json:"student_id"`
	Answers     map[int]AnswerValue `json:"answers"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// FormResponseWithStudent joins a response with its author for admin listings.
type FormResponseWithStudent struct {
	FormResponse
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
	Section     string `json:"section"`
	Year        int    `json:"year"`
}

// SubmitFormResponseRequest is the student payload for answering a form.
// Keys of Answers are field ids as decimal strings (JSON object keys).
type SubmitFormResponseRequest struct {
	Answers map[string]AnswerValue `json:"answers" binding:"required"`
}

// FieldAnswers converts the wire answer map to field-id keys. Malformed keys
// are rejected rather than dropped.
func (r *SubmitFormResponseRequest) FieldAnswers() (map[int]AnswerValue, error) {
	out := make(map[int]AnswerValue, len(r.Answers))
	for k, v := range r.Answers {
		id, err := strconv.Atoi(k)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid field id %q", k)
		}
		out[id] = v
	}
	return out, nil
}
