package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	kind       TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	body       JSONB       NOT NULL,
	seq        BIGSERIAL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS documents_kind_seq_idx ON documents (kind, seq);
`

// Store keeps every document kind in a single JSONB table keyed by
// (kind, id). Row order within a kind follows insertion.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return store.Transport("migrate", err)
	}
	return nil
}

func (s *Store) FindAll(ctx context.Context, kind store.Kind) ([][]byte, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT body
		FROM documents
		WHERE kind = $1
		ORDER BY seq
	`, string(kind))
	if err != nil {
		return nil, store.Transport("find all", err)
	}
	defer rows.Close()

	docs := [][]byte{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, store.Transport("find all", err)
		}
		docs = append(docs, body)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Transport("find all", err)
	}
	return docs, nil
}

func (s *Store) FindOne(ctx context.Context, kind store.Kind, id string) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `
		SELECT body
		FROM documents
		WHERE kind = $1 AND id = $2
	`, string(kind), id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Transport("find one", err)
	}
	return body, nil
}

func (s *Store) Insert(ctx context.Context, kind store.Kind, id string, doc []byte) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `
		INSERT INTO documents (kind, id, body)
		VALUES ($1, $2, $3)
		RETURNING body
	`, string(kind), id, doc).Scan(&body)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, store.ErrDuplicateID
		}
		return nil, store.Transport("insert", err)
	}
	return body, nil
}

func (s *Store) Replace(ctx context.Context, kind store.Kind, id string, doc []byte) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `
		UPDATE documents
		SET body = $3, updated_at = now()
		WHERE kind = $1 AND id = $2
		RETURNING body
	`, string(kind), id, doc).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Transport("replace", err)
	}
	return body, nil
}

func (s *Store) Delete(ctx context.Context, kind store.Kind, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return store.Transport("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context, kind store.Kind) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE kind = $1`, string(kind)); err != nil {
		return store.Transport("delete all", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return store.Transport("ping", err)
	}
	return nil
}
