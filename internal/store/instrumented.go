package store

import (
	"context"
	"errors"

	"github.com/atenjiha/MAHSA-LEARN/internal/metrics"
)

type instrumented struct {
	next Gateway
}

// Instrument counts every gateway call in mahsa_store_operations_total.
func Instrument(next Gateway) Gateway {
	return &instrumented{next: next}
}

func observe(kind Kind, op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrDuplicateID):
		result = "duplicate"
	case errors.Is(err, ErrTransport):
		result = "transport"
	default:
		result = "error"
	}
	metrics.StoreOperations.WithLabelValues(string(kind), op, result).Inc()
}

func (g *instrumented) FindAll(ctx context.Context, kind Kind) ([][]byte, error) {
	docs, err := g.next.FindAll(ctx, kind)
	observe(kind, "find_all", err)
	return docs, err
}

func (g *instrumented) FindOne(ctx context.Context, kind Kind, id string) ([]byte, error) {
	doc, err := g.next.FindOne(ctx, kind, id)
	observe(kind, "find_one", err)
	return doc, err
}

func (g *instrumented) Insert(ctx context.Context, kind Kind, id string, doc []byte) ([]byte, error) {
	stored, err := g.next.Insert(ctx, kind, id, doc)
	observe(kind, "insert", err)
	return stored, err
}

func (g *instrumented) Replace(ctx context.Context, kind Kind, id string, doc []byte) ([]byte, error) {
	stored, err := g.next.Replace(ctx, kind, id, doc)
	observe(kind, "replace", err)
	return stored, err
}

func (g *instrumented) Delete(ctx context.Context, kind Kind, id string) error {
	err := g.next.Delete(ctx, kind, id)
	observe(kind, "delete", err)
	return err
}

func (g *instrumented) DeleteAll(ctx context.Context, kind Kind) error {
	err := g.next.DeleteAll(ctx, kind)
	observe(kind, "delete_all", err)
	return err
}

func (g *instrumented) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}
