package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

func TestUserRoundTripThroughGateway(t *testing.T) {
	ctx := context.Background()
	repo := NewStore(store.NewMemory())

	user := model.User{ID: "12345", PIN: "1234", Name: "Sarah Jenkins", Role: model.RoleNurse, XP: 1250}
	created, err := repo.CreateUser(ctx, user)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if created.Badges == nil || created.QuizAttempts == nil {
		t.Fatalf("expected decoded defaults on stored user")
	}
	if _, err := repo.CreateUser(ctx, user); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("expected duplicate id, got %v", err)
	}

	created.XP = 1300
	if _, err := repo.SaveUser(ctx, created); err != nil {
		t.Fatalf("save error: %v", err)
	}
	got, err := repo.GetUser(ctx, "12345")
	if err != nil || got.XP != 1300 {
		t.Fatalf("unexpected user %+v err %v", got, err)
	}
	if _, err := repo.GetUser(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateUserRejectsInvalid(t *testing.T) {
	repo := NewStore(store.NewMemory())
	_, err := repo.CreateUser(context.Background(), model.User{ID: "1", PIN: "12", Name: "N", Role: model.RoleNurse})
	if !model.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListRejectsCorruptDocument(t *testing.T) {
	ctx := context.Background()
	gateway := store.NewMemory()
	gateway.Insert(ctx, store.KindUsers, "bad", []byte(`{"id":"bad","name":"No Role","pin":"1234"}`))
	repo := NewStore(gateway)
	if _, err := repo.ListUsers(ctx); !model.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCourseAndBadgeCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStore(store.NewMemory())

	course := model.Course{ID: "c1", Title: "Code Red Protocol", Category: "Emergency", Timestamp: 1}
	if _, err := repo.CreateCourse(ctx, course); err != nil {
		t.Fatalf("create course error: %v", err)
	}
	courses, err := repo.ListCourses(ctx)
	if err != nil || len(courses) != 1 || courses[0].Slides == nil {
		t.Fatalf("unexpected courses %+v err %v", courses, err)
	}
	if err := repo.DeleteCourse(ctx, "c1"); err != nil {
		t.Fatalf("delete course error: %v", err)
	}
	if _, err := repo.GetCourse(ctx, "c1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := repo.CreateBadge(ctx, model.Badge{ID: "b1", Name: "Fast Starter", Icon: "⚡", Description: "Completed first course"}); err != nil {
		t.Fatalf("create badge error: %v", err)
	}
	if _, err := repo.CreateBadge(ctx, model.Badge{ID: "b9"}); !model.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	badges, err := repo.ListBadges(ctx)
	if err != nil || len(badges) != 1 {
		t.Fatalf("unexpected badges %+v err %v", badges, err)
	}
}
