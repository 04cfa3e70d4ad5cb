package elementq

import (
	"fmt"
	"log/slog"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/queryir"
)

// Query is a deferred, reusable element query over one subtype.
type Query[T any] struct {
	ext     Extension[T]
	backend Backend
	store   *criteria.Store
	columns []queryir.Column
	logger  *slog.Logger

	// err is the first error recorded by With.
	err error

	// memo holds the collaborator-free part of the last compilation.
	memo *compiled
}

type options struct {
	logger     *slog.Logger
	deprecator criteria.Deprecator
}

// Option configures a Query.
type Option func(*options)

// WithLogger sets the logger for stage transitions, deprecation notices and
// eager-load warnings. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDeprecator overrides where deprecated-alias notices go.
func WithDeprecator(d criteria.Deprecator) Option {
	return func(o *options) {
		o.deprecator = d
	}
}

// New creates a query for the subtype described by ext.
func New[T any](ext Extension[T], backend Backend, opts ...Option) (*Query[T], error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.deprecator == nil {
		o.deprecator = criteria.SlogDeprecator{Logger: o.logger}
	}

	registry, err := criteria.NewRegistry(append(BaseCriteria(), ext.Criteria()...)...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", ext.ElementType(), err)
	}

	return &Query[T]{
		ext:     ext,
		backend: backend,
		store:   criteria.NewStore(registry, o.deprecator),
		columns: append(BaseColumns(), ext.Columns()...),
		logger:  o.logger,
	}, nil
}

// ElementType returns the subtype this query selects.
func (q *Query[T]) ElementType() string {
	return q.ext.ElementType()
}

// Set sets a criterion by name. Unknown names fail immediately with an
// unknown-criterion error; a nil value unsets the criterion.
func (q *Query[T]) Set(name string, value any) error {
	return q.store.Set(name, value)
}

// With sets a criterion and returns q for chaining. The first error is kept
// and returned by Err and by every execution method.
func (q *Query[T]) With(name string, value any) *Query[T] {
	q.Record(q.store.Set(name, value))
	return q
}

// Record keeps err as the configuration error returned by Err and by every
// execution method, unless an earlier one is already kept. Subtype
// builders with their own setters use it to chain the same way With does.
func (q *Query[T]) Record(err error) {
	if err != nil && q.err == nil {
		q.err = err
	}
}

// Err returns the first error recorded by With or Record.
func (q *Query[T]) Err() error {
	return q.err
}

// Unset removes a criterion.
func (q *Query[T]) Unset(name string) {
	q.store.Unset(name)
}

// Has reports whether a criterion is set.
func (q *Query[T]) Has(name string) bool {
	return q.store.Has(name)
}

// Criteria returns a snapshot of the criteria set so far.
func (q *Query[T]) Criteria() criteria.Snapshot {
	return q.store.Snapshot()
}

// Registry returns every criterion name the query accepts.
func (q *Query[T]) Registry() *criteria.Registry {
	return q.store.Registry()
}
