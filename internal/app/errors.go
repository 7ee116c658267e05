package app

import (
	"errors"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

const (
	CodeInvalidRequest     = "invalid_request"
	CodeValidationFailed   = "validation_failed"
	CodeInvalidPIN         = "invalid_pin"
	CodeInvalidCredentials = "invalid_credentials"
	CodeStaffNotFound      = "staff_not_found"
	CodeUserNotFound       = "user_not_found"
	CodeCourseNotFound     = "course_not_found"
	CodeBadgeNotFound      = "badge_not_found"
	CodeDuplicateID        = "duplicate_id"
	CodeCannotDeleteSelf   = "cannot_delete_self"
	CodeSessionNotFound    = "session_not_found"
	CodePlayerClosed       = "player_closed"
	CodeNotAQuizSlide      = "not_a_quiz_slide"
	CodeEmptyCourse        = "empty_course"
	CodeStoreUnavailable   = "store_unavailable"
	CodeServerError        = "server_error"
)

// Error carries a stable snake_case code for the transport layer.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(code string, err error) error {
	return &Error{Code: code, Err: err}
}

func ErrorCode(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError
}

// storeError maps gateway and model failures onto codes. notFound is the
// code to use when the referenced record is missing.
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return fail(notFound, err)
	case errors.Is(err, store.ErrDuplicateID):
		return fail(CodeDuplicateID, err)
	case model.IsValidationError(err):
		return fail(CodeValidationFailed, err)
	case errors.Is(err, store.ErrTransport):
		return fail(CodeStoreUnavailable, err)
	default:
		return fail(CodeServerError, err)
	}
}
