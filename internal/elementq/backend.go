package elementq

import (
	"context"

	"github.com/roach88/elementq/internal/queryir"
)

// Rows iterates over query results. *sqlx.Rows satisfies it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	StructScan(dest any) error
	MapScan(dest map[string]any) error
	Close() error
	Err() error
}

// Backend executes assembled queries. Implementations bind every operand as
// a parameter and hold a connection only for the duration of one call
// (and, for QueryRows, until the returned Rows is closed).
type Backend interface {
	QueryRows(ctx context.Context, q queryir.Select) (Rows, error)
	Count(ctx context.Context, q queryir.Select) (int64, error)
}

// Explainer is implemented by backends that can show the statement they
// would run for a query.
type Explainer interface {
	Explain(q queryir.Select) (string, []any, error)
}
