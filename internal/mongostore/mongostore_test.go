package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

func openTestMongo(t *testing.T) *Store {
	uri := os.Getenv("MAHSA_TEST_MONGO")
	if uri == "" {
		t.Skip("MAHSA_TEST_MONGO not set")
		return nil
	}
	s, err := Connect(context.Background(), uri, "mahsa_test")
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
		return nil
	}
	return s
}

func TestMongoStore(t *testing.T) {
	s := openTestMongo(t)
	if s == nil {
		return
	}
	ctx := context.Background()
	defer s.Close(ctx)

	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("index error: %v", err)
	}
	if err := s.DeleteAll(ctx, store.KindCourses); err != nil {
		t.Fatalf("delete all error: %v", err)
	}

	doc := []byte(`{"id":"c1","title":"Hand Hygiene Protocol","timestamp":1735689600000,"slides":[]}`)
	if _, err := s.Insert(ctx, store.KindCourses, "c1", doc); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	if _, err := s.Insert(ctx, store.KindCourses, "c1", doc); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("expected duplicate id, got %v", err)
	}

	got, err := s.FindOne(ctx, store.KindCourses, "c1")
	if err != nil {
		t.Fatalf("find one error: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(got, &fields); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if _, ok := fields["_id"]; ok {
		t.Fatalf("expected _id to be projected away: %s", got)
	}
	if fields["timestamp"] != float64(1735689600000) {
		t.Fatalf("expected plain numeric timestamp, got %v", fields["timestamp"])
	}

	if _, err := s.Replace(ctx, store.KindCourses, "missing", doc); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.Delete(ctx, store.KindCourses, "c1"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	all, err := s.FindAll(ctx, store.KindCourses)
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty collection, got %d err %v", len(all), err)
	}
}
