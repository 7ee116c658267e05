package app

import (
	"context"
	"strings"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

// Users

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, CodeUserNotFound)
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	return user, nil
}

// CreateUser adds a staff member. A blank avatar is generated from the name.
func (s *Service) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	user.ID = strings.TrimSpace(user.ID)
	user.Name = strings.TrimSpace(user.Name)
	if user.Avatar == "" && user.Name != "" {
		user.Avatar = model.AvatarURL(user.Name)
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}
	if user.CompletedCourses == nil {
		user.CompletedCourses = []string{}
	}
	if user.QuizAttempts == nil {
		user.QuizAttempts = []model.QuizAttempt{}
	}
	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	return created, nil
}

// UserUpdate is a partial edit; nil fields are left as stored.
type UserUpdate struct {
	Name             *string
	PIN              *string
	Role             *model.Role
	Avatar           *string
	XP               *int
	Streak           *int
	Badges           []string
	CompletedCourses []string
}

// UpdateUser applies an educator edit. Progress fields change only when
// supplied. Renaming without an explicit avatar regenerates it.
func (s *Service) UpdateUser(ctx context.Context, id string, update UserUpdate) (model.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	next := user.Clone()
	if update.Name != nil {
		next.Name = strings.TrimSpace(*update.Name)
		if next.Name != user.Name && update.Avatar == nil {
			next.Avatar = model.AvatarURL(next.Name)
		}
	}
	if update.PIN != nil {
		next.PIN = *update.PIN
	}
	if update.Role != nil {
		next.Role = *update.Role
	}
	if update.Avatar != nil {
		next.Avatar = *update.Avatar
	}
	if update.XP != nil {
		next.XP = *update.XP
	}
	if update.Streak != nil {
		next.Streak = *update.Streak
	}
	if update.Badges != nil {
		next.Badges = append([]string{}, update.Badges...)
	}
	if update.CompletedCourses != nil {
		next.CompletedCourses = append([]string{}, update.CompletedCourses...)
	}
	saved, err := s.repo.SaveUser(ctx, next)
	if err != nil {
		return model.User{}, storeError(err, CodeUserNotFound)
	}
	return saved, nil
}

// DeleteUser removes a staff member. actorID cannot remove themself.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return fail(CodeCannotDeleteSelf, nil)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return storeError(err, CodeUserNotFound)
	}
	return nil
}

// Courses

func (s *Service) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, storeError(err, CodeCourseNotFound)
	}
	return courses, nil
}

func (s *Service) GetCourse(ctx context.Context, id string) (model.Course, error) {
	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return model.Course{}, storeError(err, CodeCourseNotFound)
	}
	return course, nil
}

// CreateCourse stores a new course, assigning an id and creation timestamp
// when they are absent.
func (s *Service) CreateCourse(ctx context.Context, course model.Course) (model.Course, error) {
	if strings.TrimSpace(course.ID) == "" {
		course.ID = "c-" + s.newID()
	}
	if course.Timestamp == 0 {
		course.Timestamp = model.Millis(s.now())
	}
	if course.Slides == nil {
		course.Slides = []model.Slide{}
	}
	created, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		return model.Course{}, storeError(err, CodeCourseNotFound)
	}
	return created, nil
}

// UpdateCourse replaces the course stored under id. A zero timestamp keeps
// the stored one.
func (s *Service) UpdateCourse(ctx context.Context, id string, course model.Course) (model.Course, error) {
	current, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return model.Course{}, storeError(err, CodeCourseNotFound)
	}
	course.ID = id
	if course.Timestamp == 0 {
		course.Timestamp = current.Timestamp
	}
	if course.Slides == nil {
		course.Slides = []model.Slide{}
	}
	saved, err := s.repo.SaveCourse(ctx, course)
	if err != nil {
		return model.Course{}, storeError(err, CodeCourseNotFound)
	}
	return saved, nil
}

// DeleteCourse removes a course. Users who completed it keep the id in
// completedCourses.
func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return storeError(err, CodeCourseNotFound)
	}
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return model.Categories(courses), nil
}

// Badges

func (s *Service) ListBadges(ctx context.Context) ([]model.Badge, error) {
	badges, err := s.repo.ListBadges(ctx)
	if err != nil {
		return nil, storeError(err, CodeBadgeNotFound)
	}
	return badges, nil
}

func (s *Service) GetBadge(ctx context.Context, id string) (model.Badge, error) {
	badge, err := s.repo.GetBadge(ctx, id)
	if err != nil {
		return model.Badge{}, storeError(err, CodeBadgeNotFound)
	}
	return badge, nil
}

func (s *Service) CreateBadge(ctx context.Context, badge model.Badge) (model.Badge, error) {
	created, err := s.repo.CreateBadge(ctx, badge)
	if err != nil {
		return model.Badge{}, storeError(err, CodeBadgeNotFound)
	}
	return created, nil
}
