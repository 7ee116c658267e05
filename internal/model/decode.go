package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Fields listed here have no documented default: a stored document missing
// any of them, or holding null, is rejected rather than patched.
var (
	userRequired        = []string{"id", "pin", "name", "role"}
	courseRequired      = []string{"id", "title", "category"}
	slideRequired       = []string{"id", "type", "title"}
	badgeRequired       = []string{"id", "name", "icon", "description"}
	quizRequired        = []string{"question", "options", "correctIndex"}
	quizAttemptRequired = []string{"courseId", "slideId", "question", "selectedOption", "isCorrect", "timestamp"}
)

type rawFields map[string]json.RawMessage

// DecodeUser maps a stored user document to a User. Absent avatar, xp,
// streak, badges, completedCourses and quizAttempts take their zero defaults.
func DecodeUser(doc []byte) (User, error) {
	fields, err := decodeFields(doc, "")
	if err != nil {
		return User{}, err
	}
	if err := requireFields(fields, "", userRequired); err != nil {
		return User{}, err
	}
	if err := eachElement(fields, "quizAttempts", func(prefix string, item rawFields) error {
		return requireFields(item, prefix, quizAttemptRequired)
	}); err != nil {
		return User{}, err
	}

	var user User
	if err := unmarshalDoc(doc, &user); err != nil {
		return User{}, err
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}
	if user.CompletedCourses == nil {
		user.CompletedCourses = []string{}
	}
	if user.QuizAttempts == nil {
		user.QuizAttempts = []QuizAttempt{}
	}
	if err := ValidateUser(user); err != nil {
		return User{}, err
	}
	return user, nil
}

// DecodeCourse maps a stored course document to a Course. A missing
// timestamp defaults to now; slides, xpReward and durationMinutes default
// to empty/zero.
func DecodeCourse(doc []byte, now time.Time) (Course, error) {
	fields, err := decodeFields(doc, "")
	if err != nil {
		return Course{}, err
	}
	if err := requireFields(fields, "", courseRequired); err != nil {
		return Course{}, err
	}
	if err := eachElement(fields, "slides", func(prefix string, item rawFields) error {
		if err := requireFields(item, prefix, slideRequired); err != nil {
			return err
		}
		quiz, ok := item["quizData"]
		if !ok || isNull(quiz) {
			return nil
		}
		quizFields, err := decodeFields(quiz, prefix+"quizData")
		if err != nil {
			return err
		}
		return requireFields(quizFields, prefix+"quizData.", quizRequired)
	}); err != nil {
		return Course{}, err
	}

	var course Course
	if err := unmarshalDoc(doc, &course); err != nil {
		return Course{}, err
	}
	if course.Slides == nil {
		course.Slides = []Slide{}
	}
	if raw, ok := fields["timestamp"]; !ok || isNull(raw) {
		course.Timestamp = Millis(now)
	}
	if err := ValidateCourse(course); err != nil {
		return Course{}, err
	}
	return course, nil
}

func DecodeBadge(doc []byte) (Badge, error) {
	fields, err := decodeFields(doc, "")
	if err != nil {
		return Badge{}, err
	}
	if err := requireFields(fields, "", badgeRequired); err != nil {
		return Badge{}, err
	}
	var badge Badge
	if err := unmarshalDoc(doc, &badge); err != nil {
		return Badge{}, err
	}
	if err := ValidateBadge(badge); err != nil {
		return Badge{}, err
	}
	return badge, nil
}

func decodeFields(doc []byte, field string) (rawFields, error) {
	var fields rawFields
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, &ValidationError{Field: field, Message: "must be a JSON object"}
	}
	if fields == nil {
		return nil, &ValidationError{Field: field, Message: "must be a JSON object"}
	}
	return fields, nil
}

func requireFields(fields rawFields, prefix string, names []string) error {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			return &ValidationError{Field: prefix + name, Message: "is required"}
		}
	}
	return nil
}

func eachElement(fields rawFields, name string, fn func(prefix string, item rawFields) error) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return &ValidationError{Field: name, Message: "must be an array"}
	}
	for i, item := range items {
		prefix := fmt.Sprintf("%s[%d]", name, i)
		itemFields, err := decodeFields(item, prefix)
		if err != nil {
			return err
		}
		if err := fn(prefix+".", itemFields); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalDoc(doc []byte, out interface{}) error {
	if err := json.Unmarshal(doc, out); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return &ValidationError{Field: typeErr.Field, Message: "has the wrong type"}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
