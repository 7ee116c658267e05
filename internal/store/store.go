package store

import (
	"context"
	"errors"
	"fmt"
)

// Kind names a collection of documents keyed by their external id.
type Kind string

const (
	KindUsers   Kind = "users"
	KindCourses Kind = "courses"
	KindBadges  Kind = "badges"
)

var Kinds = []Kind{KindUsers, KindCourses, KindBadges}

func (k Kind) Valid() bool {
	switch k {
	case KindUsers, KindCourses, KindBadges:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound    = errors.New("document not found")
	ErrDuplicateID = errors.New("document id already exists")
	ErrTransport   = errors.New("store unavailable")
)

// Transport wraps a driver failure so callers can match ErrTransport.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}

// Gateway stores raw JSON documents. Ids are the external "id" field, never
// a storage-internal key. FindAll returns documents in insertion order.
type Gateway interface {
	FindAll(ctx context.Context, kind Kind) ([][]byte, error)
	FindOne(ctx context.Context, kind Kind, id string) ([]byte, error)
	Insert(ctx context.Context, kind Kind, id string, doc []byte) ([]byte, error)
	Replace(ctx context.Context, kind Kind, id string, doc []byte) ([]byte, error)
	Delete(ctx context.Context, kind Kind, id string) error
	DeleteAll(ctx context.Context, kind Kind) error
	Ping(ctx context.Context) error
}
