package model

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

type Role string

const (
	RoleNurse    Role = "Nurse"
	RoleEducator Role = "Educator"
)

type SlideType string

const (
	SlideIntro   SlideType = "intro"
	SlideVideo   SlideType = "video"
	SlideQuiz    SlideType = "quiz"
	SlideSummary SlideType = "summary"
)

// NewCourseWindow is how long after creation a course is flagged as new.
const NewCourseWindow = 7 * 24 * time.Hour

type User struct {
	ID               string        `json:"id" validate:"required"`
	PIN              string        `json:"pin" validate:"pin"`
	Name             string        `json:"name" validate:"required"`
	Role             Role          `json:"role" validate:"oneof=Nurse Educator"`
	Avatar           string        `json:"avatar"`
	XP               int           `json:"xp" validate:"gte=0"`
	Streak           int           `json:"streak" validate:"gte=0"`
	Badges           []string      `json:"badges" validate:"dive,required"`
	CompletedCourses []string      `json:"completedCourses" validate:"dive,required"`
	QuizAttempts     []QuizAttempt `json:"quizAttempts" validate:"dive"`
}

type QuizAttempt struct {
	CourseID       string `json:"courseId" validate:"required"`
	SlideID        string `json:"slideId" validate:"required"`
	Question       string `json:"question"`
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
	Timestamp      int64  `json:"timestamp" validate:"gte=0"`
}

type Course struct {
	ID              string  `json:"id" validate:"required"`
	Title           string  `json:"title" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	Slides          []Slide `json:"slides" validate:"unique=ID,dive"`
	XPReward        int     `json:"xpReward" validate:"gte=0"`
	DurationMinutes int     `json:"durationMinutes" validate:"gte=0"`
	Timestamp       int64   `json:"timestamp" validate:"gte=0"`
}

type Slide struct {
	ID       string    `json:"id" validate:"required"`
	Type     SlideType `json:"type" validate:"oneof=intro video quiz summary"`
	Title    string    `json:"title" validate:"required"`
	Content  string    `json:"content"`
	Image    string    `json:"image,omitempty"`
	QuizData *QuizData `json:"quizData,omitempty"`
}

type QuizData struct {
	Question     string   `json:"question" validate:"required"`
	Options      []string `json:"options" validate:"min=2,dive,required"`
	CorrectIndex int      `json:"correctIndex" validate:"gte=0"`
}

type Badge struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Icon        string `json:"icon" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (u User) HasBadge(id string) bool {
	return contains(u.Badges, id)
}

func (u User) HasCompleted(courseID string) bool {
	return contains(u.CompletedCourses, courseID)
}

func (u User) IsNurse() bool {
	return u.Role == RoleNurse
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	out := u
	out.Badges = append([]string{}, u.Badges...)
	out.CompletedCourses = append([]string{}, u.CompletedCourses...)
	out.QuizAttempts = append([]QuizAttempt{}, u.QuizAttempts...)
	return out
}

func (c Course) SlideCount() int {
	return len(c.Slides)
}

func (c Course) QuizSlideCount() int {
	count := 0
	for _, slide := range c.Slides {
		if slide.Type == SlideQuiz {
			count++
		}
	}
	return count
}

func (c Course) IsNew(now time.Time) bool {
	created := time.UnixMilli(c.Timestamp)
	return now.Sub(created) < NewCourseWindow
}

func (c Course) Clone() Course {
	out := c
	out.Slides = make([]Slide, len(c.Slides))
	for i, slide := range c.Slides {
		if slide.QuizData != nil {
			quiz := *slide.QuizData
			quiz.Options = append([]string{}, slide.QuizData.Options...)
			slide.QuizData = &quiz
		}
		out.Slides[i] = slide
	}
	return out
}

// Categories returns "All" followed by the distinct course categories in
// lexical order.
func Categories(courses []Course) []string {
	seen := make(map[string]struct{})
	var unique []string
	for _, course := range courses {
		if _, ok := seen[course.Category]; ok {
			continue
		}
		seen[course.Category] = struct{}{}
		unique = append(unique, course.Category)
	}
	sort.Strings(unique)
	return append([]string{"All"}, unique...)
}

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleNurse, RoleEducator:
		return Role(value), true
	default:
		return "", false
	}
}

func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// AvatarURL is the generated avatar for a display name.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20") + "&background=random"
}
