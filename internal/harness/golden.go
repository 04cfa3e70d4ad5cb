package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/elementq/internal/ir"
)

// Snapshot renders the parts of a result that should not drift between
// runs: the explained SQL and params, the conditions and the ids. Keys are
// in canonical order so the bytes are stable.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snap := map[string]any{
		"scenario": scenarioName,
		"ids":      result.IDs,
		"count":    result.Count,
	}
	if result.IDs == nil {
		snap["ids"] = []int64{}
	}
	if ex := result.Explanation; ex != nil {
		snap["sql"] = ex.SQL
		snap["short_circuit"] = ex.ShortCircuit
		conditions := make([]any, len(ex.Conditions))
		for i, c := range ex.Conditions {
			conditions[i] = c
		}
		snap["conditions"] = conditions
		params := ex.Params
		if params == nil {
			params = []any{}
		}
		snap["params"] = params
	}
	if result.ErrorKind != "" {
		snap["error"] = result.ErrorKind
	}

	data, err := ir.MarshalCanonical(snap)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's snapshot against its golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
