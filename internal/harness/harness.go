package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/elementq/internal/assetq"
	"github.com/roach88/elementq/internal/elementq"
	"github.com/roach88/elementq/internal/savedquery"
	"github.com/roach88/elementq/internal/store"
	"github.com/roach88/elementq/internal/testutil"
)

// Harness runs scenarios against throwaway stores.
type Harness struct {
	driver string
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithDriver selects the SQLite driver. Defaults to store.DriverMattn.
func WithDriver(driver string) Option {
	return func(h *Harness) {
		h.driver = driver
	}
}

// WithLogger sets the logger handed to each query. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		driver: store.DriverMattn,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with default options.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes scenario and evaluates its expectations.
//
// A query failure is part of the Result, not an error: it is compared
// against expect.error. Run returns an error only when the scenario could
// not be set up (store or fixture).
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "elementq-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	clock := testutil.NewDeterministicClock()
	uids := &testutil.SequentialUIDs{}
	st, err := store.Open(h.driver, filepath.Join(dir, "scenario.db"),
		store.WithClock(clock.Now),
		store.WithUIDGenerator(uids.Generate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if scenario.Fixture != "" {
		if _, err := st.LoadFixtureFile(ctx, scenario.Fixture); err != nil {
			return nil, fmt.Errorf("failed to load fixture: %w", err)
		}
	}

	result := NewResult()
	first, err := h.execute(ctx, st, scenario, result)
	if err != nil {
		result.Err = err
		result.ErrorKind = classify(err)
	}

	h.logger.Debug("scenario executed",
		"scenario", scenario.Name,
		"ids", result.IDs,
		"count", result.Count,
		"error_kind", result.ErrorKind,
	)

	evaluate(scenario, result, first)
	return result, nil
}

// execute runs the scenario's query through every execution form the
// expectations use, filling result as it goes. It returns the first
// result's id (nil when there is none) and the first error.
func (h *Harness) execute(ctx context.Context, st *store.Store, scenario *Scenario, result *Result) (*int64, error) {
	q, err := assetq.New(st, assetq.Collaborators{
		Volumes:    st.Volumes(),
		Folders:    st.Folders(),
		Transforms: st,
	}, elementq.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}

	saved := savedquery.Query{Name: scenario.Name, Criteria: scenario.Criteria}
	if err := saved.Apply(q); err != nil {
		return nil, err
	}

	ex, err := q.Explain(ctx)
	if err != nil {
		return nil, err
	}
	result.Explanation = ex

	ids, err := q.IDs(ctx)
	if err != nil {
		return nil, err
	}
	result.IDs = ids

	count, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}
	result.Count = count

	if scenario.Expect.First == nil {
		return nil, nil
	}
	one, err := q.One(ctx)
	if err != nil || one == nil {
		return nil, err
	}
	return &one.ID, nil
}

// classify maps a query error to a scenario error kind.
func classify(err error) string {
	switch {
	case elementq.IsUnknownCriterion(err):
		return ErrUnknownCriterion
	case elementq.IsInvalidCriterionValue(err):
		return ErrInvalidValue
	case elementq.IsExecutionFailure(err):
		return ErrExecutionFailure
	case elementq.IsMaterializationFailure(err):
		return ErrMaterializationFailure
	}
	return ""
}
