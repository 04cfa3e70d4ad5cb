package elementq

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/predicate"
	"github.com/roach88/elementq/internal/queryir"
)

// widget is a minimal element subtype used to exercise the core.
type widget struct {
	ID     int64  `db:"id"`
	Colour string `db:"colour"`
	Shelf  int64  `db:"shelf"`

	Labels []string `db:"-"`
}

// widgetExt declares a subtype with one column criterion, a deprecated
// alias and a handle criterion resolved through a collaborator.
type widgetExt struct {
	shelves     map[string]int64
	resolves    int
	resolveErr  error
	populated   int
	populateErr error
}

func (e *widgetExt) ElementType() string { return "widget" }

func (e *widgetExt) Joins() []queryir.Join {
	return []queryir.Join{{
		Kind:  queryir.InnerJoin,
		Table: queryir.Table{Name: "widgets"},
		Field: "widgets.id",
		Other: "elements.id",
	}}
}

func (e *widgetExt) Columns() []queryir.Column {
	return []queryir.Column{
		{Expr: "widgets.colour", As: "colour"},
		{Expr: "widgets.shelf", As: "shelf"},
	}
}

func (e *widgetExt) Criteria() []criteria.Definition {
	return []criteria.Definition{
		{Name: "colour", Kind: criteria.KindString, Column: "widgets.colour"},
		{Name: "color", AliasOf: "colour"},
		{Name: "shelf", Kind: criteria.KindHandle},
	}
}

func (e *widgetExt) Resolve(ctx context.Context, snap criteria.Snapshot) ([]predicate.Filter, error) {
	e.resolves++
	if e.resolveErr != nil {
		return nil, e.resolveErr
	}
	v, ok := snap.Get("shelf")
	if !ok {
		return nil, nil
	}
	def, _ := snap.Definition("shelf")
	pred, err := predicate.ResolveHandles(ctx, e, def, "widgets.shelf", v)
	if err != nil {
		return nil, err
	}
	return []predicate.Filter{{Criterion: "shelf", Predicate: pred}}, nil
}

func (e *widgetExt) IDsByHandle(_ context.Context, handles []string) ([]int64, error) {
	ids := []int64{}
	for _, h := range handles {
		if id, ok := e.shelves[h]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (e *widgetExt) Populate(_ context.Context, _ criteria.Snapshot, items []*widget) error {
	e.populated++
	if e.populateErr != nil {
		return e.populateErr
	}
	for _, w := range items {
		w.Labels = []string{w.Colour}
	}
	return nil
}

// fakeBackend records every query it receives and serves canned rows.
type fakeBackend struct {
	rows     []widget
	selects  []queryir.Select
	counts   int
	queryErr error
	scanErr  error
	iterErr  error
}

func (b *fakeBackend) QueryRows(_ context.Context, q queryir.Select) (Rows, error) {
	b.selects = append(b.selects, q)
	if b.queryErr != nil {
		return nil, b.queryErr
	}
	rows := b.rows
	if q.Offset > 0 {
		if int(q.Offset) >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit != nil && int(*q.Limit) < len(rows) {
		rows = rows[:*q.Limit]
	}
	return &fakeRows{rows: rows, idx: -1, scanErr: b.scanErr, iterErr: b.iterErr}, nil
}

func (b *fakeBackend) Count(_ context.Context, q queryir.Select) (int64, error) {
	b.selects = append(b.selects, q)
	b.counts++
	if b.queryErr != nil {
		return 0, b.queryErr
	}
	return int64(len(b.rows)), nil
}

func (b *fakeBackend) calls() int {
	return len(b.selects)
}

// explainingBackend adds Explainer to fakeBackend.
type explainingBackend struct {
	fakeBackend
}

func (b *explainingBackend) Explain(q queryir.Select) (string, []any, error) {
	return "SELECT fake FROM " + q.From.Name, []any{int64(len(q.Columns))}, nil
}

type fakeRows struct {
	rows    []widget
	idx     int
	scanErr error
	iterErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	if len(dest) != 1 {
		return errors.New("fakeRows.Scan: expected one destination")
	}
	*(dest[0].(*int64)) = r.rows[r.idx].ID
	return nil
}

func (r *fakeRows) StructScan(dest any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	w, ok := dest.(*widget)
	if !ok {
		return errors.New("fakeRows.StructScan: unexpected destination")
	}
	*w = r.rows[r.idx]
	return nil
}

func (r *fakeRows) MapScan(dest map[string]any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	w := r.rows[r.idx]
	dest["id"] = w.ID
	dest["colour"] = []byte(w.Colour)
	dest["shelf"] = w.Shelf
	return nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func (r *fakeRows) Err() error {
	return r.iterErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleWidgets() []widget {
	return []widget{
		{ID: 1, Colour: "red", Shelf: 10},
		{ID: 2, Colour: "blue", Shelf: 10},
		{ID: 3, Colour: "red", Shelf: 20},
	}
}

func ints(ns ...int64) []ir.IRValue {
	out := make([]ir.IRValue, len(ns))
	for i, n := range ns {
		out[i] = ir.IRInt(n)
	}
	return out
}
