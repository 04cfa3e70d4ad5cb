package elementq

import (
	"context"
	"log/slog"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/predicate"
	"github.com/roach88/elementq/internal/queryir"
)

// All returns every matching element, eager-loaded. It never returns a nil
// slice on success.
func (q *Query[T]) All(ctx context.Context) ([]*T, error) {
	p, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if p.empty {
		return []*T{}, nil
	}

	items, err := q.fetch(ctx, p.sel)
	if err != nil {
		return nil, err
	}
	q.populate(ctx, p.snap, items)
	return items, nil
}

// One returns the first matching element, or nil if there is none.
func (q *Query[T]) One(ctx context.Context) (*T, error) {
	return q.Nth(ctx, 0)
}

// Nth returns the element at zero-based position n of the result, or nil if
// the result is shorter. Position counts from the query's offset and stays
// within its limit.
func (q *Query[T]) Nth(ctx context.Context, n int) (*T, error) {
	if n < 0 {
		return nil, criteria.NewInvalidValueError("nth", "position must not be negative, got %d", n)
	}

	p, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if p.empty || (p.sel.Limit != nil && int64(n) >= *p.sel.Limit) {
		return nil, nil
	}

	sel := p.sel
	one := int64(1)
	sel.Limit = &one
	sel.Offset += int64(n)

	items, err := q.fetch(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	q.populate(ctx, p.snap, items)
	return items[0], nil
}

// IDs returns the ids of every matching element in result order.
func (q *Query[T]) IDs(ctx context.Context) ([]int64, error) {
	p, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if p.empty {
		return []int64{}, nil
	}

	sel := p.sel
	sel.Columns = []queryir.Column{{Expr: ElementsTable + ".id", As: "id"}}

	rows, err := q.backend.QueryRows(ctx, sel)
	if err != nil {
		return nil, q.fail(ErrCodeExecutionFailure, StageExecuted, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, q.fail(ErrCodeMaterializationFailure, StageMaterialized, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail(ErrCodeExecutionFailure, StageExecuted, err)
	}
	q.logStage(StageMaterialized, p.snap, "rows", len(ids))
	return ids, nil
}

// Count returns the number of matching elements. Ordering, limit and offset
// do not apply.
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	p, err := q.prepare(ctx)
	if err != nil {
		return 0, err
	}
	if p.empty {
		return 0, nil
	}

	n, err := q.backend.Count(ctx, p.sel)
	if err != nil {
		return 0, q.fail(ErrCodeExecutionFailure, StageExecuted, err)
	}
	q.logStage(StageExecuted, p.snap, "count", n)
	return n, nil
}

// Rows returns matching rows as column maps without hydrating elements or
// eager loading. Text columns are returned as strings.
func (q *Query[T]) Rows(ctx context.Context) ([]map[string]any, error) {
	p, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if p.empty {
		return []map[string]any{}, nil
	}

	rows, err := q.backend.QueryRows(ctx, p.sel)
	if err != nil {
		return nil, q.fail(ErrCodeExecutionFailure, StageExecuted, err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any, len(p.sel.Columns))
		if err := rows.MapScan(row); err != nil {
			return nil, q.fail(ErrCodeMaterializationFailure, StageMaterialized, err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail(ErrCodeExecutionFailure, StageExecuted, err)
	}
	q.logStage(StageMaterialized, p.snap, "rows", len(out))
	return out, nil
}

// Explanation describes what an execution would do.
type Explanation struct {
	ElementType string             `json:"element_type"`
	Fingerprint string             `json:"fingerprint"`
	Filters     []predicate.Filter `json:"-"`
	Conditions  []string           `json:"conditions"`
	Select      queryir.Select     `json:"-"`
	SQL         string             `json:"sql,omitempty"`
	Params      []any              `json:"params,omitempty"`

	// ShortCircuit is true when the result is known to be empty and
	// storage would not be queried.
	ShortCircuit bool `json:"short_circuit"`
}

// Explain prepares the query without executing it. Collaborators are still
// consulted to resolve handles and folder trees.
func (q *Query[T]) Explain(ctx context.Context) (*Explanation, error) {
	p, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}

	fingerprint, err := p.snap.Fingerprint()
	if err != nil {
		return nil, err
	}

	ex := &Explanation{
		ElementType:  q.ext.ElementType(),
		Fingerprint:  fingerprint,
		Filters:      p.filters,
		Conditions:   make([]string, len(p.filters)),
		Select:       p.sel,
		ShortCircuit: p.empty,
	}
	for i, f := range p.filters {
		ex.Conditions[i] = f.String()
	}

	if explainer, ok := q.backend.(Explainer); ok && !p.empty {
		ex.SQL, ex.Params, err = explainer.Explain(p.sel)
		if err != nil {
			return nil, q.fail(ErrCodeExecutionFailure, StageJoined, err)
		}
	}
	return ex, nil
}

// fetch executes sel and scans every row into a new T.
func (q *Query[T]) fetch(ctx context.Context, sel queryir.Select) ([]*T, error) {
	rows, err := q.backend.QueryRows(ctx, sel)
	if err != nil {
		return nil, q.fail(ErrCodeExecutionFailure, StageExecuted, err)
	}
	defer rows.Close()

	items := []*T{}
	for rows.Next() {
		item := new(T)
		if err := rows.StructScan(item); err != nil {
			return nil, q.fail(ErrCodeMaterializationFailure, StageMaterialized, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail(ErrCodeExecutionFailure, StageExecuted, err)
	}
	return items, nil
}

// populate hands a materialized batch to the extension. Failures are logged
// and the batch is returned as is.
func (q *Query[T]) populate(ctx context.Context, snap criteria.Snapshot, items []*T) {
	if len(items) > 0 {
		if err := q.ext.Populate(ctx, snap, items); err != nil {
			q.logger.Warn("eager load failed",
				"type", q.ext.ElementType(),
				"elements", len(items),
				"error", err)
		}
	}
	q.logStage(StageMaterialized, snap, "rows", len(items))
}

func (q *Query[T]) fail(code ErrorCode, stage Stage, err error) *QueryError {
	return &QueryError{
		Code:        code,
		Stage:       stage,
		ElementType: q.ext.ElementType(),
		Err:         err,
	}
}

func (q *Query[T]) logStage(stage Stage, snap criteria.Snapshot, attrs ...any) {
	if !q.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	args := append([]any{
		"type", q.ext.ElementType(),
		"stage", stage,
		"criteria", snap.Len(),
		"version", snap.Version(),
	}, attrs...)
	q.logger.Debug("element query", args...)
}
