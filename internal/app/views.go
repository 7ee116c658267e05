package app

import (
	"context"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/progress"
)

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Rank    int                `json:"rank"`
}

// Profile is a user as returned over the API, without the PIN.
type Profile struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Role             model.Role          `json:"role"`
	Avatar           string              `json:"avatar"`
	XP               int                 `json:"xp"`
	Streak           int                 `json:"streak"`
	Badges           []string            `json:"badges"`
	CompletedCourses []string            `json:"completedCourses"`
	QuizAttempts     []model.QuizAttempt `json:"quizAttempts"`
}

func ProfileOf(user model.User) Profile {
	return Profile{
		ID:               user.ID,
		Name:             user.Name,
		Role:             user.Role,
		Avatar:           user.Avatar,
		XP:               user.XP,
		Streak:           user.Streak,
		Badges:           user.Badges,
		CompletedCourses: user.CompletedCourses,
		QuizAttempts:     user.QuizAttempts,
	}
}

type Dashboard struct {
	User          Profile                `json:"user"`
	Level         int                    `json:"level"`
	LevelProgress float64                `json:"levelProgress"`
	Rank          int                    `json:"rank"`
	Badges        []progress.BadgeStatus `json:"badges"`
	Courses       []progress.CourseCard  `json:"courses"`
	Categories    []string               `json:"categories"`
}

type Compliance struct {
	Summary progress.ComplianceSummary `json:"summary"`
	Nurses  []progress.NurseProgress   `json:"nurses"`
}

// Leaderboard returns the top nurses and the caller's rank among all
// nurses, which is 0 for educators.
func (s *Service) Leaderboard(ctx context.Context, userID string) (Leaderboard, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return Leaderboard{}, err
	}
	top := progress.ComputeLeaderboard(users)
	board := Leaderboard{
		Entries: make([]LeaderboardEntry, 0, len(top)),
		Rank:    progress.Rank(users, userID),
	}
	for i, user := range top {
		board.Entries = append(board.Entries, LeaderboardEntry{
			Rank:   i + 1,
			ID:     user.ID,
			Name:   user.Name,
			Avatar: user.Avatar,
			XP:     user.XP,
			Level:  progress.ComputeLevel(user.XP),
		})
	}
	return board, nil
}

func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	snapshot, err := s.Load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	var user model.User
	found := false
	for _, candidate := range snapshot.Users {
		if candidate.ID == userID {
			user, found = candidate, true
			break
		}
	}
	if !found {
		return Dashboard{}, fail(CodeUserNotFound, nil)
	}
	badges, err := s.ListBadges(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		User:          ProfileOf(user),
		Level:         progress.ComputeLevel(user.XP),
		LevelProgress: progress.ComputeLevelProgress(user.XP),
		Rank:          progress.Rank(snapshot.Users, user.ID),
		Badges:        progress.BadgeShelf(user, badges),
		Courses:       progress.CourseCards(user, snapshot.Courses, s.now()),
		Categories:    model.Categories(snapshot.Courses),
	}, nil
}

func (s *Service) Compliance(ctx context.Context) (Compliance, error) {
	snapshot, err := s.Load(ctx)
	if err != nil {
		return Compliance{}, err
	}
	return Compliance{
		Summary: progress.Compliance(snapshot.Users, snapshot.Courses),
		Nurses:  progress.NurseProgressList(snapshot.Users, snapshot.Courses),
	}, nil
}
