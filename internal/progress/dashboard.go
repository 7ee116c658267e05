package progress

import (
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

type ComplianceSummary struct {
	Rate        int `json:"rate"`
	Nurses      int `json:"nurses"`
	Courses     int `json:"courses"`
	Completed   int `json:"completed"`
	Pending     int `json:"pending"`
	Assignments int `json:"assignments"`
}

type NurseProgress struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type BadgeStatus struct {
	model.Badge
	Unlocked bool `json:"unlocked"`
}

type CourseCard struct {
	model.Course
	Completed  bool `json:"completed"`
	New        bool `json:"new"`
	QuizSlides int  `json:"quizSlides"`
	MaxXP      int  `json:"maxXp"`
}

func Compliance(users []model.User, courses []model.Course) ComplianceSummary {
	nurses := Nurses(users)
	summary := ComplianceSummary{
		Rate:        ComputeComplianceRate(nurses, courses),
		Nurses:      len(nurses),
		Courses:     len(courses),
		Assignments: len(nurses) * len(courses),
	}
	for _, nurse := range nurses {
		summary.Completed += len(nurse.CompletedCourses)
	}
	summary.Pending = summary.Assignments - summary.Completed
	if summary.Pending < 0 {
		summary.Pending = 0
	}
	return summary
}

func NurseProgressList(users []model.User, courses []model.Course) []NurseProgress {
	nurses := Nurses(users)
	out := make([]NurseProgress, 0, len(nurses))
	for _, nurse := range nurses {
		out = append(out, NurseProgress{
			ID:        nurse.ID,
			Name:      nurse.Name,
			Avatar:    nurse.Avatar,
			XP:        nurse.XP,
			Level:     ComputeLevel(nurse.XP),
			Completed: len(nurse.CompletedCourses),
			Total:     len(courses),
		})
	}
	return out
}

func BadgeShelf(user model.User, catalog []model.Badge) []BadgeStatus {
	out := make([]BadgeStatus, 0, len(catalog))
	for _, badge := range catalog {
		out = append(out, BadgeStatus{Badge: badge, Unlocked: user.HasBadge(badge.ID)})
	}
	return out
}

func CourseCards(user model.User, courses []model.Course, now time.Time) []CourseCard {
	out := make([]CourseCard, 0, len(courses))
	for _, course := range courses {
		out = append(out, CourseCard{
			Course:     course,
			Completed:  user.HasCompleted(course.ID),
			New:        course.IsNew(now),
			QuizSlides: course.QuizSlideCount(),
			MaxXP:      course.QuizSlideCount() * XPPerSlide,
		})
	}
	return out
}
