package progress

import (
	"math"
	"sort"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

const (
	XPPerSlide        = 50
	XPPerLevel        = 500
	LeaderboardSize   = 10
	KnowledgeSeekerXP = 1000
	StreakMasterDays  = 7
)

const (
	BadgeFastStarter     = "b1"
	BadgeKnowledgeSeeker = "b2"
	BadgeStreakMaster    = "b3"
	BadgeQuizWhiz        = "b4"
)

type Completion struct {
	User          model.User
	Applied       bool
	GrantedBadges []string
	EarnedXP      int
}

type InvalidXPError struct {
	EarnedXP int
}

func (e *InvalidXPError) Error() string {
	return "earned xp must not be negative"
}

// ApplyCompletion credits a first completion of course to user. A course
// already in completedCourses yields the user unchanged with Applied false.
func ApplyCompletion(user model.User, course model.Course, earnedXP int) (Completion, error) {
	if earnedXP < 0 {
		return Completion{}, &InvalidXPError{EarnedXP: earnedXP}
	}
	if user.HasCompleted(course.ID) {
		return Completion{User: user}, nil
	}

	maxPossibleXP := MaxPossibleXP(course)
	perfect := maxPossibleXP > 0 && earnedXP == maxPossibleXP

	next := user.Clone()
	next.XP = user.XP + earnedXP
	next.CompletedCourses = append(next.CompletedCourses, course.ID)

	var granted []string
	grant := func(id string, cond bool) {
		if cond && !next.HasBadge(id) {
			next.Badges = append(next.Badges, id)
			granted = append(granted, id)
		}
	}
	grant(BadgeFastStarter, len(next.CompletedCourses) == 1)
	grant(BadgeKnowledgeSeeker, next.XP >= KnowledgeSeekerXP)
	grant(BadgeQuizWhiz, perfect)

	return Completion{
		User:          next,
		Applied:       true,
		GrantedBadges: granted,
		EarnedXP:      earnedXP,
	}, nil
}

func MaxPossibleXP(course model.Course) int {
	return course.SlideCount() * XPPerSlide
}

// RecordQuizAttempt appends attempt without deduplication.
func RecordQuizAttempt(user model.User, attempt model.QuizAttempt) model.User {
	next := user.Clone()
	next.QuizAttempts = append(next.QuizAttempts, attempt)
	return next
}

// GrantStreakBadge adds b3 when the externally maintained streak has
// reached StreakMasterDays. It never removes the badge.
func GrantStreakBadge(user model.User) (model.User, bool) {
	if user.Streak < StreakMasterDays || user.HasBadge(BadgeStreakMaster) {
		return user, false
	}
	next := user.Clone()
	next.Badges = append(next.Badges, BadgeStreakMaster)
	return next, true
}

func ComputeLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// ComputeLevelProgress is the fraction in [0,1) of the current level earned.
func ComputeLevelProgress(xp int) float64 {
	if xp < 0 {
		xp = 0
	}
	level := ComputeLevel(xp)
	return float64(xp-(level-1)*XPPerLevel) / XPPerLevel
}

func Nurses(users []model.User) []model.User {
	var nurses []model.User
	for _, user := range users {
		if user.IsNurse() {
			nurses = append(nurses, user)
		}
	}
	return nurses
}

func rankedNurses(users []model.User) []model.User {
	nurses := Nurses(users)
	sort.SliceStable(nurses, func(i, j int) bool {
		return nurses[i].XP > nurses[j].XP
	})
	return nurses
}

func ComputeLeaderboard(users []model.User) []model.User {
	ranked := rankedNurses(users)
	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}
	return ranked
}

// Rank is the 1-based position of userID among all nurses by xp, or 0 when
// the user is not a nurse.
func Rank(users []model.User, userID string) int {
	for i, user := range rankedNurses(users) {
		if user.ID == userID {
			return i + 1
		}
	}
	return 0
}

func ComputeComplianceRate(nurses []model.User, courses []model.Course) int {
	total := len(nurses) * len(courses)
	if total == 0 {
		return 0
	}
	completions := 0
	for _, nurse := range nurses {
		completions += len(nurse.CompletedCourses)
	}
	return int(math.Round(100 * float64(completions) / float64(total)))
}
