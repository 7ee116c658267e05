package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atenjiha/MAHSA-LEARN/internal/auth"
	"github.com/atenjiha/MAHSA-LEARN/internal/crypto"
	"github.com/atenjiha/MAHSA-LEARN/internal/metrics"
	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/progress"
	"github.com/atenjiha/MAHSA-LEARN/internal/repository"
	"github.com/atenjiha/MAHSA-LEARN/internal/sessions"
	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

// Service is the application state. The gateway behind repo is the single
// writer of record: every mutation is persisted before its result is
// returned, and a failed write leaves the stored record as it was.
type Service struct {
	repo     *repository.Store
	sessions sessions.Store
	now      func() time.Time
	newID    func() string
}

func NewService(repo *repository.Store, sessionStore sessions.Store) *Service {
	return &Service{
		repo:     repo,
		sessions: sessionStore,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

type Snapshot struct {
	Users   []model.User
	Courses []model.Course
}

// Load fetches every user and course. Any failure is reported as
// store_unavailable so the caller can offer a retry instead of a partial view.
func (s *Service) Load(ctx context.Context) (Snapshot, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return Snapshot{}, fail(CodeStoreUnavailable, err)
	}
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return Snapshot{}, fail(CodeStoreUnavailable, err)
	}
	return Snapshot{Users: users, Courses: courses}, nil
}

// Auth

func (s *Service) Login(ctx context.Context, id, pin string) (model.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, fail(CodeInvalidCredentials, nil)
	}
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	if err := crypto.CheckPIN(user.PIN, pin); err != nil {
		return model.User{}, fail(CodeInvalidCredentials, nil)
	}
	return user, nil
}

// ResetPIN runs the forgot-PIN flow for staffID and returns the id to
// pre-fill on the login form.
func (s *Service) ResetPIN(ctx context.Context, staffID, pin string) (string, error) {
	flow := auth.NewPINReset(func(ctx context.Context, id, pin string) error {
		user, err := s.repo.GetUser(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return auth.ErrStaffNotFound
		}
		if err != nil {
			return err
		}
		user.PIN = pin
		_, err = s.repo.SaveUser(ctx, user)
		return err
	})
	if err := flow.SubmitID(staffID); err != nil {
		return "", fail(CodeInvalidRequest, err)
	}
	if err := flow.SubmitPIN(ctx, pin); err != nil {
		switch {
		case errors.Is(err, crypto.ErrInvalidPIN):
			return "", fail(CodeInvalidPIN, err)
		case errors.Is(err, auth.ErrStaffNotFound):
			return "", fail(CodeStaffNotFound, err)
		default:
			return "", storeError(err, CodeStaffNotFound)
		}
	}
	log.Printf("pin reset for staff %s", flow.LoginID())
	return flow.LoginID(), nil
}

func (s *Service) ChangePIN(ctx context.Context, userID, pin string) (model.User, error) {
	if err := crypto.ValidatePIN(pin); err != nil {
		return model.User{}, fail(CodeInvalidPIN, err)
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	user.PIN = pin
	saved, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	return saved, nil
}

// Progress

func (s *Service) RecordQuizAttempt(ctx context.Context, userID string, attempt model.QuizAttempt) (model.User, error) {
	if attempt.Timestamp == 0 {
		attempt.Timestamp = model.Millis(s.now())
	}
	if err := model.ValidateQuizAttempt(attempt); err != nil {
		return model.User{}, fail(CodeValidationFailed, err)
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	saved, err := s.repo.SaveUser(ctx, progress.RecordQuizAttempt(user, attempt))
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	metrics.QuizAttempts.WithLabelValues(metrics.QuizResult(attempt.IsCorrect)).Inc()
	return saved, nil
}

// CompleteCourse credits earnedXP for courseID. A replay of an already
// completed course returns the stored user with Applied false.
func (s *Service) CompleteCourse(ctx context.Context, userID, courseID string, earnedXP int) (progress.Completion, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return progress.Completion{}, storeError(err, CodeUserNotFound)
	}
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return progress.Completion{}, storeError(err, CodeCourseNotFound)
	}
	return s.applyCompletion(ctx, user, course, earnedXP)
}

func (s *Service) applyCompletion(ctx context.Context, user model.User, course model.Course, earnedXP int) (progress.Completion, error) {
	result, err := progress.ApplyCompletion(user, course, earnedXP)
	if err != nil {
		return progress.Completion{}, fail(CodeValidationFailed, &model.ValidationError{Field: "earnedXp", Message: err.Error()})
	}
	if !result.Applied {
		return result, nil
	}
	saved, err := s.repo.SaveUser(ctx, result.User)
	if err != nil {
		return progress.Completion{}, storeError(err, CodeUserNotFound)
	}
	result.User = saved

	metrics.CourseCompletions.Inc()
	for _, badge := range result.GrantedBadges {
		metrics.BadgesGranted.WithLabelValues(badge).Inc()
	}
	log.Printf("user %s completed course %s: +%d xp, badges %v", user.ID, course.ID, earnedXP, result.GrantedBadges)
	return result, nil
}

// GrantStreakBadges awards b3 to every user whose streak qualifies and
// returns how many users changed.
func (s *Service) GrantStreakBadges(ctx context.Context) (int, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return 0, storeError(err, CodeUserNotFound)
	}
	granted := 0
	for _, user := range users {
		next, changed := progress.GrantStreakBadge(user)
		if !changed {
			continue
		}
		if _, err := s.repo.SaveUser(ctx, next); err != nil {
			return granted, storeError(err, CodeUserNotFound)
		}
		metrics.BadgesGranted.WithLabelValues(progress.BadgeStreakMaster).Inc()
		granted++
	}
	return granted, nil
}
