package seed

import (
	"context"
	"log"
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/repository"
	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

type Catalog struct {
	Users   []model.User
	Badges  []model.Badge
	Courses []model.Course
}

func staff(id, name, role, avatar string, xp, streak int, badges ...string) model.User {
	if badges == nil {
		badges = []string{}
	}
	return model.User{
		ID:               id,
		PIN:              "1234",
		Name:             name,
		Role:             model.Role(role),
		Avatar:           avatar,
		XP:               xp,
		Streak:           streak,
		Badges:           badges,
		CompletedCourses: []string{},
		QuizAttempts:     []model.QuizAttempt{},
	}
}

// Default is the starter roster, badge catalog and two courses. The hand
// hygiene course is back-dated so only Code Red shows as new.
func Default(now time.Time) Catalog {
	return Catalog{
		Users: []model.User{
			staff("12345", "Sarah Jenkins", "Nurse", "https://ui-avatars.com/api/?name=Sarah+Jenkins&background=0ea5e9&color=fff", 1250, 5, "b1", "b2"),
			staff("54321", "Mike Ross", "Nurse", "https://ui-avatars.com/api/?name=Mike+Ross&background=f59e0b&color=fff", 850, 2, "b1"),
			staff("99901", "Emily Blunt", "Nurse", "https://ui-avatars.com/api/?name=Emily+Blunt&background=10b981&color=fff", 2100, 12, "b1", "b2", "b3"),
			staff("admin", "Dr. A. Wong", "Educator", "https://ui-avatars.com/api/?name=Dr+Wong&background=6366f1&color=fff", 0, 0),
		},
		Badges: []model.Badge{
			{ID: "b1", Name: "Fast Starter", Icon: "⚡", Description: "Completed first course"},
			{ID: "b2", Name: "Knowledge Seeker", Icon: "📚", Description: "Earned 1000+ XP"},
			{ID: "b3", Name: "Streak Master", Icon: "🔥", Description: "7-day login streak"},
			{ID: "b4", Name: "Quiz Whiz", Icon: "🧠", Description: "Perfect score on a quiz"},
		},
		Courses: []model.Course{
			{
				ID:              "c1",
				Title:           "Hand Hygiene Protocol",
				Category:        "Infection Control",
				DurationMinutes: 5,
				XPReward:        100,
				Timestamp:       model.Millis(now.Add(-1000000 * time.Second)),
				Slides: []model.Slide{
					{
						ID:      "s1",
						Type:    model.SlideIntro,
						Title:   "Importance of Hygiene",
						Content: "Proper hand hygiene is the single most important way to prevent the spread of infection.",
						Image:   "https://images.unsplash.com/photo-1584634731339-252c581abfc5?auto=format&fit=crop&q=80&w=800",
					},
					{
						ID:      "s2",
						Type:    model.SlideVideo,
						Title:   "The 5 Moments",
						Content: "https://www.youtube.com/embed/IisgnbMfKvI?rel=0&modestbranding=1&enablejsapi=1",
					},
					{
						ID:    "s3",
						Type:  model.SlideQuiz,
						Title: "Quick Check",
						QuizData: &model.QuizData{
							Question:     "How long should you rub your hands together with soap?",
							Options:      []string{"5 seconds", "10 seconds", "At least 20 seconds", "1 minute"},
							CorrectIndex: 2,
						},
					},
					{
						ID:      "s4",
						Type:    model.SlideSummary,
						Title:   "Module Complete",
						Content: "You have successfully reviewed the Hand Hygiene protocols. Keep up the good work!",
						Image:   "https://images.unsplash.com/photo-1628160205073-b26a117b9b00?auto=format&fit=crop&q=80&w=800",
					},
				},
			},
			{
				ID:              "c2",
				Title:           "Code Red Protocol",
				Category:        "Emergency",
				DurationMinutes: 8,
				XPReward:        150,
				Timestamp:       model.Millis(now),
				Slides: []model.Slide{
					{
						ID:      "s1",
						Type:    model.SlideIntro,
						Title:   "Fire Safety",
						Content: "Remember R.A.C.E: Rescue, Alarm, Contain, Extinguish.",
						Image:   "https://images.unsplash.com/photo-1599839575945-a9e5af0c3fa5?auto=format&fit=crop&q=80&w=800",
					},
					{
						ID:    "s2",
						Type:  model.SlideQuiz,
						Title: "R.A.C.E Acronym",
						QuizData: &model.QuizData{
							Question:     `What does the "C" stand for in RACE?`,
							Options:      []string{"Call", "Contain", "Cancel", "Care"},
							CorrectIndex: 1,
						},
					},
					{
						ID:      "s3",
						Type:    model.SlideSummary,
						Title:   "Stay Alert",
						Content: "Knowing the Code Red protocol saves lives. Ensure you know where the nearest exit is.",
					},
				},
			},
		},
	}
}

// Load writes catalog through repo. With clear set, every existing user,
// course and badge is deleted first.
func Load(ctx context.Context, repo *repository.Store, catalog Catalog, clear bool) error {
	if clear {
		for _, kind := range store.Kinds {
			if err := repo.Clear(ctx, kind); err != nil {
				return err
			}
		}
		log.Printf("seed cleared existing data")
	}
	for _, user := range catalog.Users {
		if _, err := repo.CreateUser(ctx, user); err != nil {
			return err
		}
	}
	log.Printf("seed inserted %d users", len(catalog.Users))
	for _, badge := range catalog.Badges {
		if _, err := repo.CreateBadge(ctx, badge); err != nil {
			return err
		}
	}
	log.Printf("seed inserted %d badges", len(catalog.Badges))
	for _, course := range catalog.Courses {
		if _, err := repo.CreateCourse(ctx, course); err != nil {
			return err
		}
	}
	log.Printf("seed inserted %d courses", len(catalog.Courses))
	return nil
}

// LoadIfEmpty seeds only when the user collection is empty.
func LoadIfEmpty(ctx context.Context, repo *repository.Store, catalog Catalog) (bool, error) {
	users, err := repo.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	return true, Load(ctx, repo, catalog, true)
}
