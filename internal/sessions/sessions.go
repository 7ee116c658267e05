package sessions

import (
	"context"
	"errors"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/player"
)

var ErrNotFound = errors.New("player session not found")

// Session is one in-progress playthrough. The course is snapshotted at
// open so an educator edit mid-play cannot shift slide indexes.
type Session struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Course    model.Course `json:"course"`
	State     player.State `json:"state"`
	StartedAt int64        `json:"startedAt"`
}

type Store interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
