package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"gorm.io/datatypes"
)

func validQuiz() *QuizCreateRequest {
	return &QuizCreateRequest{
		CourseID: 1,
		Title:    "Week 1",
		Questions: []QuestionCreateRequest{
			{Text: "Capital of France?", Type: models.MultipleChoice, Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris", Points: 10},
			{Text: "Go has generics", Type: models.TrueFalse, CorrectAnswer: "True", Points: 5},
			{Text: "2+2", Type: models.ShortAnswer, CorrectAnswer: "4"},
		},
	}
}

func TestValidateQuizCreate(t *testing.T) {
	v := New()
	open := time.Now()
	before := open.Add(-time.Hour)

	tests := []struct {
		name      string
		mutate    func(r *QuizCreateRequest)
		wantField string
	}{
		{name: "valid", mutate: func(r *QuizCreateRequest) {}},
		{name: "missing course", mutate: func(r *QuizCreateRequest) { r.CourseID = 0 }, wantField: "course_id"},
		{name: "blank title", mutate: func(r *QuizCreateRequest) { r.Title = "   " }, wantField: "title"},
		{name: "close before open", mutate: func(r *QuizCreateRequest) { r.OpenTime, r.CloseTime = &open, &before }, wantField: "close_time"},
		{name: "unknown type", mutate: func(r *QuizCreateRequest) { r.Questions[2].Type = "essay" }, wantField: "type"},
		{name: "negative points", mutate: func(r *QuizCreateRequest) { r.Questions[0].Points = -1 }, wantField: "points"},
		{name: "answer not an option", mutate: func(r *QuizCreateRequest) { r.Questions[0].CorrectAnswer = "Berlin" }, wantField: "questions[0].correct_answer"},
		{name: "single option", mutate: func(r *QuizCreateRequest) { r.Questions[0].Options = []string{"Paris"} }, wantField: "questions[0].options"},
		{name: "true false answer", mutate: func(r *QuizCreateRequest) { r.Questions[1].CorrectAnswer = "yes" }, wantField: "questions[1].correct_answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validQuiz()
			tt.mutate(req)
			errs := v.ValidateQuizCreate(req)
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected error on %q, got %+v", tt.wantField, errs)
			}
		})
	}
}

func TestValidateQuestionUpdateMergesExisting(t *testing.T) {
	v := New()
	existing := &models.Question{
		Type:          models.MultipleChoice,
		Options:       datatypes.JSONSlice[string]{"A", "B"},
		CorrectAnswer: "A",
	}

	answer := "B"
	if errs := v.ValidateQuestionUpdate(&QuestionUpdateRequest{CorrectAnswer: &answer}, existing); len(errs) != 0 {
		t.Fatalf("expected valid update, got %v", errs)
	}

	answer = "C"
	if errs := v.ValidateQuestionUpdate(&QuestionUpdateRequest{CorrectAnswer: &answer}, existing); len(errs) == 0 {
		t.Fatal("expected answer outside options to fail")
	}

	if errs := v.ValidateQuestionUpdate(&QuestionUpdateRequest{Options: []string{"C", "D"}}, existing); len(errs) == 0 {
		t.Fatal("expected options without the stored answer to fail")
	}
}

func TestValidateReturnsValidationErrors(t *testing.T) {
	v := New()
	err := v.Validate(&CourseCreateRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(verrs), verrs)
	}

	if err := v.Validate(&CourseCreateRequest{Title: "Go", Description: "Intro", Duration: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsTrueFalse(t *testing.T) {
	for _, in := range []string{"True", "false", " TRUE ", "fAlSe"} {
		if !IsTrueFalse(in) {
			t.Errorf("IsTrueFalse(%q) = false", in)
		}
	}
	for _, in := range []string{"", "yes", "1", "truth"} {
		if IsTrueFalse(in) {
			t.Errorf("IsTrueFalse(%q) = true", in)
		}
	}
}
