package store

import (
	"context"
	"fmt"

	"github.com/roach88/elementq/internal/elementq"
	"github.com/roach88/elementq/internal/queryir"
)

var (
	_ elementq.Backend   = (*Store)(nil)
	_ elementq.Explainer = (*Store)(nil)
)

// QueryRows compiles q and runs it. The caller must close the rows, which
// releases the connection.
func (s *Store) QueryRows(ctx context.Context, q queryir.Select) (elementq.Rows, error) {
	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.From.Name, err)
	}
	return rows, nil
}

// Count returns the number of rows q matches, ignoring its order and paging.
func (s *Store) Count(ctx context.Context, q queryir.Select) (int64, error) {
	query, params, err := s.compiler.CompileCount(q)
	if err != nil {
		return 0, fmt.Errorf("compile count: %w", err)
	}

	var n int64
	if err := s.db.GetContext(ctx, &n, query, params...); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.From.Name, err)
	}
	return n, nil
}

// Explain returns the statement and parameters QueryRows would run for q.
func (s *Store) Explain(q queryir.Select) (string, []any, error) {
	return s.compiler.Compile(q)
}
