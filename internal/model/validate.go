package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

var validate = newValidator()

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return ValidPIN(fl.Field().String())
	})
	v.RegisterStructValidation(slideStructLevel, Slide{})
	v.RegisterStructValidation(quizStructLevel, QuizData{})
	return v
}

func slideStructLevel(sl validator.StructLevel) {
	slide := sl.Current().Interface().(Slide)
	if slide.Type == SlideQuiz && slide.QuizData == nil {
		sl.ReportError(slide.QuizData, "quizData", "QuizData", "required_for_quiz", "")
	}
	if slide.Type != SlideQuiz && slide.QuizData != nil {
		sl.ReportError(slide.QuizData, "quizData", "QuizData", "quiz_only", "")
	}
}

func quizStructLevel(sl validator.StructLevel) {
	quiz := sl.Current().Interface().(QuizData)
	if quiz.CorrectIndex >= len(quiz.Options) {
		sl.ReportError(quiz.CorrectIndex, "correctIndex", "CorrectIndex", "option_index", "")
	}
}

// ValidPIN reports whether pin is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

func ValidateUser(user User) error {
	return structError(validate.Struct(user))
}

func ValidateCourse(course Course) error {
	return structError(validate.Struct(course))
}

func ValidateBadge(badge Badge) error {
	return structError(validate.Struct(badge))
}

func ValidateQuizAttempt(attempt QuizAttempt) error {
	return structError(validate.Struct(attempt))
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	first := fieldErrs[0]
	return &ValidationError{
		Field:   fieldPath(first.Namespace()),
		Message: tagMessage(first),
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "pin":
		return "must be exactly 4 digits"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "unique":
		return "must not repeat " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "required_for_quiz":
		return "is required for quiz slides"
	case "quiz_only":
		return "is only allowed on quiz slides"
	case "option_index":
		return "must index into options"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
