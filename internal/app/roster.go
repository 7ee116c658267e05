package app

import (
	"context"
	"io"

	"github.com/atenjiha/MAHSA-LEARN/internal/roster"
)

type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ImportUsers merges a CSV roster into the stored users. Writes stop at the
// first failure; the summary counts what was persisted before it.
func (s *Service) ImportUsers(ctx context.Context, r io.Reader) (ImportSummary, error) {
	parsed, err := roster.Parse(r)
	if err != nil {
		return ImportSummary{}, fail(CodeInvalidRequest, err)
	}
	summary := ImportSummary{Skipped: parsed.Skipped}
	existing, err := s.ListUsers(ctx)
	if err != nil {
		return summary, err
	}
	merged := roster.Merge(existing, parsed.Rows)
	for _, user := range merged.Updated {
		if _, err := s.repo.SaveUser(ctx, user); err != nil {
			return summary, storeError(err, CodeUserNotFound)
		}
		summary.Updated++
	}
	for _, user := range merged.Created {
		if _, err := s.repo.CreateUser(ctx, user); err != nil {
			return summary, storeError(err, CodeUserNotFound)
		}
		summary.Created++
	}
	return summary, nil
}

func (s *Service) ExportUsers(ctx context.Context, w io.Writer) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}
	if err := roster.Export(w, users); err != nil {
		return fail(CodeServerError, err)
	}
	return nil
}
