package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAnswerValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   AnswerValue
		want string
	}{
		{"single", SingleAnswer("hello"), `"hello"`},
		{"empty single", SingleAnswer(""), `""`},
		{"multi", MultiAnswer([]string{"AI", "Web"}), `["AI","Web"]`},
		{"empty multi", MultiAnswer(nil), `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAnswerValueUnmarshalJSON(t *testing.T) {
	var a AnswerValue
	if err := json.Unmarshal([]byte(`"yes"`), &a); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if a.Multi || a.Value != "yes" {
		t.Errorf("got %+v, want single value yes", a)
	}

	if err := json.Unmarshal([]byte(`["AI","IoT"]`), &a); err != nil {
		t.Fatalf("Unmarshal array: %v", err)
	}
	if !a.Multi || !reflect.DeepEqual(a.Values, []string{"AI", "IoT"}) {
		t.Errorf("got %+v, want multi [AI IoT]", a)
	}

	for _, bad := range []string{`42`, `{"a":1}`, `[1,2]`, `true`} {
		if err := json.Unmarshal([]byte(bad), &a); err == nil {
			t.Errorf("Unmarshal(%s) accepted, want error", bad)
		}
	}
}

func TestAnswerValueString(t *testing.T) {
	if got := SingleAnswer("yes").String(); got != "yes" {
		t.Errorf("String = %q, want yes", got)
	}
	if got := MultiAnswer([]string{"AI", "Web", "IoT"}).String(); got != "AI, Web, IoT" {
		t.Errorf("String = %q, want comma-joined", got)
	}
	if got := MultiAnswer(nil).String(); got != "" {
		t.Errorf("String = %q, want empty", got)
	}
}

func TestFieldAnswers(t *testing.T) {
	req := &SubmitFormResponseRequest{Answers: map[string]AnswerValue{
		"1": SingleAnswer("Ananya"),
		"3": MultiAnswer([]string{"AI"}),
	}}

	got, err := req.FieldAnswers()
	if err != nil {
		t.Fatalf("FieldAnswers: %v", err)
	}
	if len(got) != 2 || got[1].Value != "Ananya" || !got[3].Multi {
		t.Errorf("FieldAnswers = %v", got)
	}

	for _, bad := range []string{"abc", "0", "-1", "1.5", ""} {
		req := &SubmitFormResponseRequest{Answers: map[string]AnswerValue{
			bad: SingleAnswer("x"),
		}}
		if _, err := req.FieldAnswers(); err == nil {
			t.Errorf("FieldAnswers accepted key %q, want error", bad)
		}
	}
}
