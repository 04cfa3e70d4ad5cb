package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an expectation does not hold.
type AssertionError struct {
	Type     string         // expectation name, e.g. "ids"
	Expected string         // human-readable expected outcome
	Actual   string         // human-readable actual outcome
	Criteria map[string]any // the scenario's criteria, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Criteria) > 0 {
		names := make([]string, 0, len(e.Criteria))
		for name := range e.Criteria {
			names = append(names, name)
		}
		slices.Sort(names)

		fmt.Fprintf(&buf, "\nCriteria:\n")
		for _, name := range names {
			fmt.Fprintf(&buf, "  %s = %v\n", name, e.Criteria[name])
		}
	}
	return buf.String()
}

// evaluate checks every set expectation of s against r and records each
// failure on r.
func evaluate(s *Scenario, r *Result, first *int64) {
	for _, err := range checks(s, r, first) {
		if err != nil {
			r.AddError(err.Error())
		}
	}
}

func checks(s *Scenario, r *Result, first *int64) []error {
	e := s.Expect
	var errs []error
	if r.Err != nil || e.Error != "" {
		errs = append(errs, assertError(s, r))
	} else {
		if e.IDs != nil {
			errs = append(errs, assertIDs(s, r.IDs))
		}
		if e.Count != nil {
			errs = append(errs, assertCount(s, r.Count))
		}
		if e.First != nil {
			errs = append(errs, assertFirst(s, first))
		}
	}
	// Explain can succeed even when execution fails.
	if e.Conditions != nil && r.Explanation != nil {
		errs = append(errs, assertConditions(s, r.Explanation.Conditions))
	}
	if e.ShortCircuit != nil && r.Explanation != nil {
		errs = append(errs, assertShortCircuit(s, r.Explanation.ShortCircuit))
	}
	return errs
}

// assertError checks the failure kind. A query that fails without an
// expected error, or succeeds when one is expected, is also reported here.
func assertError(s *Scenario, r *Result) error {
	want := s.Expect.Error
	switch {
	case want == "" && r.Err != nil:
		return &AssertionError{
			Type:     "error",
			Expected: "no error",
			Actual:   r.Err.Error(),
			Criteria: s.Criteria,
		}
	case want != "" && r.Err == nil:
		return &AssertionError{
			Type:     "error",
			Expected: want,
			Actual:   "query succeeded",
			Criteria: s.Criteria,
		}
	case want != r.ErrorKind:
		return &AssertionError{
			Type:     "error",
			Expected: want,
			Actual:   fmt.Sprintf("%s (%v)", kindOrUnknown(r.ErrorKind), r.Err),
			Criteria: s.Criteria,
		}
	}
	return nil
}

func kindOrUnknown(kind string) string {
	if kind == "" {
		return "unclassified"
	}
	return kind
}

func assertIDs(s *Scenario, got []int64) error {
	if slices.Equal(s.Expect.IDs, got) {
		return nil
	}
	return &AssertionError{
		Type:     "ids",
		Expected: fmt.Sprintf("%v", s.Expect.IDs),
		Actual:   fmt.Sprintf("%v", got),
		Criteria: s.Criteria,
	}
}

func assertCount(s *Scenario, got int64) error {
	if *s.Expect.Count == got {
		return nil
	}
	return &AssertionError{
		Type:     "count",
		Expected: fmt.Sprintf("%d", *s.Expect.Count),
		Actual:   fmt.Sprintf("%d", got),
		Criteria: s.Criteria,
	}
}

// assertFirst compares the first result's id; 0 expects no result.
func assertFirst(s *Scenario, got *int64) error {
	want := *s.Expect.First
	switch {
	case got == nil && want == 0:
		return nil
	case got != nil && *got == want:
		return nil
	}

	actual := "no result"
	if got != nil {
		actual = fmt.Sprintf("%d", *got)
	}
	return &AssertionError{
		Type:     "first",
		Expected: fmt.Sprintf("%d", want),
		Actual:   actual,
		Criteria: s.Criteria,
	}
}

// assertConditions requires each expected condition to appear. Extra
// conditions are allowed.
func assertConditions(s *Scenario, got []string) error {
	var missing []string
	for _, want := range s.Expect.Conditions {
		if !slices.Contains(got, want) {
			missing = append(missing, want)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     "conditions",
		Expected: fmt.Sprintf("conditions including %q", missing),
		Actual:   fmt.Sprintf("%q", got),
		Criteria: s.Criteria,
	}
}

func assertShortCircuit(s *Scenario, got bool) error {
	if *s.Expect.ShortCircuit == got {
		return nil
	}
	return &AssertionError{
		Type:     "shortCircuit",
		Expected: fmt.Sprintf("%t", *s.Expect.ShortCircuit),
		Actual:   fmt.Sprintf("%t", got),
		Criteria: s.Criteria,
	}
}
