package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	// Report JSON field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateQuizCreate validates quiz creation business rules
func (bv *BusinessValidator) ValidateQuizCreate(req *QuizCreateRequest) ValidationErrors {
	var errors ValidationErrors

	// Basic struct validation
	errors = append(errors, bv.Validate(req)...)

	if req.OpenTime != nil && req.CloseTime != nil && !req.CloseTime.After(*req.OpenTime) {
		errors = append(errors, ValidationError{
			Field:   "close_time",
			Message: "must be after open_time",
			Value:   req.CloseTime,
			Rule:    "quiz_window",
		})
	}

	for i := range req.Questions {
		q := req.Questions[i]
		errors = append(errors, bv.validateQuestionShape(fmt.Sprintf("questions[%d]", i), q.Type, q.Options, q.CorrectAnswer)...)
	}

	return errors
}

// ValidateQuestionUpdate validates a question update against the question it modifies
func (bv *BusinessValidator) ValidateQuestionUpdate(req *QuestionUpdateRequest, existing *models.Question) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if len(errors) > 0 {
		return errors
	}

	questionType := existing.Type
	if req.Type != nil {
		questionType = *req.Type
	}
	options := []string(existing.Options)
	if req.Options != nil {
		options = req.Options
	}
	answer := existing.CorrectAnswer
	if req.CorrectAnswer != nil {
		answer = *req.CorrectAnswer
	}

	return append(errors, bv.validateQuestionShape("question", questionType, options, answer)...)
}

// ValidateCorrectAnswer checks a replacement answer against the question type
func (bv *BusinessValidator) ValidateCorrectAnswer(question *models.Question, answer string) ValidationErrors {
	return bv.validateQuestionShape("correct_answer", question.Type, question.Options, answer)
}

// validateQuestionShape checks options and the correct answer for the question type
func (bv *BusinessValidator) validateQuestionShape(field string, questionType models.QuestionType, options []string, answer string) ValidationErrors {
	var errors ValidationErrors

	switch questionType {
	case models.MultipleChoice:
		if len(options) < 2 {
			errors = append(errors, ValidationError{
				Field:   field + ".options",
				Message: "multiple choice questions need at least 2 options",
				Value:   len(options),
				Rule:    "business_logic",
			})
			break
		}
		q := models.Question{Options: options}
		if !q.HasOption(answer) {
			errors = append(errors, ValidationError{
				Field:   field + ".correct_answer",
				Message: "must be one of the options",
				Value:   answer,
				Rule:    "business_logic",
			})
		}
	case models.TrueFalse:
		if !IsTrueFalse(answer) {
			errors = append(errors, ValidationError{
				Field:   field + ".correct_answer",
				Message: "must be True or False",
				Value:   answer,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// IsTrueFalse reports whether answer is "true" or "false" in any letter case
func IsTrueFalse(answer string) bool {
	answer = strings.TrimSpace(answer)
	return strings.EqualFold(answer, "true") || strings.EqualFold(answer, "false")
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Quiz title validation (1-200 characters)
	bv.validate.RegisterValidation("quiz_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	bv.validate.RegisterValidation("non_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// question type validation
	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).Valid()
	})
}
