package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

// Store maps gateway documents to domain records. Every write is validated
// before it reaches the gateway and every read goes through the model
// decoders.
type Store struct {
	gateway store.Gateway
	now     func() time.Time
}

func NewStore(gateway store.Gateway) *Store {
	return &Store{gateway: gateway, now: time.Now}
}

func (s *Store) Gateway() store.Gateway {
	return s.gateway
}

func (s *Store) Ping(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}

func (s *Store) Clear(ctx context.Context, kind store.Kind) error {
	return s.gateway.DeleteAll(ctx, kind)
}

// Users

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	docs, err := s.gateway.FindAll(ctx, store.KindUsers)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for i, doc := range docs {
		user, err := model.DecodeUser(doc)
		if err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	doc, err := s.gateway.FindOne(ctx, store.KindUsers, id)
	if err != nil {
		return model.User{}, err
	}
	return model.DecodeUser(doc)
}

func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	doc, err := encode(user, model.ValidateUser)
	if err != nil {
		return model.User{}, err
	}
	stored, err := s.gateway.Insert(ctx, store.KindUsers, user.ID, doc)
	if err != nil {
		return model.User{}, err
	}
	return model.DecodeUser(stored)
}

func (s *Store) SaveUser(ctx context.Context, user model.User) (model.User, error) {
	doc, err := encode(user, model.ValidateUser)
	if err != nil {
		return model.User{}, err
	}
	stored, err := s.gateway.Replace(ctx, store.KindUsers, user.ID, doc)
	if err != nil {
		return model.User{}, err
	}
	return model.DecodeUser(stored)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.gateway.Delete(ctx, store.KindUsers, id)
}

// Courses

func (s *Store) ListCourses(ctx context.Context) ([]model.Course, error) {
	docs, err := s.gateway.FindAll(ctx, store.KindCourses)
	if err != nil {
		return nil, err
	}
	now := s.now()
	courses := make([]model.Course, 0, len(docs))
	for i, doc := range docs {
		course, err := model.DecodeCourse(doc, now)
		if err != nil {
			return nil, fmt.Errorf("courses[%d]: %w", i, err)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (model.Course, error) {
	doc, err := s.gateway.FindOne(ctx, store.KindCourses, id)
	if err != nil {
		return model.Course{}, err
	}
	return model.DecodeCourse(doc, s.now())
}

func (s *Store) CreateCourse(ctx context.Context, course model.Course) (model.Course, error) {
	doc, err := encode(course, model.ValidateCourse)
	if err != nil {
		return model.Course{}, err
	}
	stored, err := s.gateway.Insert(ctx, store.KindCourses, course.ID, doc)
	if err != nil {
		return model.Course{}, err
	}
	return model.DecodeCourse(stored, s.now())
}

func (s *Store) SaveCourse(ctx context.Context, course model.Course) (model.Course, error) {
	doc, err := encode(course, model.ValidateCourse)
	if err != nil {
		return model.Course{}, err
	}
	stored, err := s.gateway.Replace(ctx, store.KindCourses, course.ID, doc)
	if err != nil {
		return model.Course{}, err
	}
	return model.DecodeCourse(stored, s.now())
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	return s.gateway.Delete(ctx, store.KindCourses, id)
}

// Badges

func (s *Store) ListBadges(ctx context.Context) ([]model.Badge, error) {
	docs, err := s.gateway.FindAll(ctx, store.KindBadges)
	if err != nil {
		return nil, err
	}
	badges := make([]model.Badge, 0, len(docs))
	for i, doc := range docs {
		badge, err := model.DecodeBadge(doc)
		if err != nil {
			return nil, fmt.Errorf("badges[%d]: %w", i, err)
		}
		badges = append(badges, badge)
	}
	return badges, nil
}

func (s *Store) GetBadge(ctx context.Context, id string) (model.Badge, error) {
	doc, err := s.gateway.FindOne(ctx, store.KindBadges, id)
	if err != nil {
		return model.Badge{}, err
	}
	return model.DecodeBadge(doc)
}

func (s *Store) CreateBadge(ctx context.Context, badge model.Badge) (model.Badge, error) {
	doc, err := encode(badge, model.ValidateBadge)
	if err != nil {
		return model.Badge{}, err
	}
	stored, err := s.gateway.Insert(ctx, store.KindBadges, badge.ID, doc)
	if err != nil {
		return model.Badge{}, err
	}
	return model.DecodeBadge(stored)
}

func encode[T any](record T, validate func(T) error) ([]byte, error) {
	if err := validate(record); err != nil {
		return nil, err
	}
	return json.Marshal(record)
}
