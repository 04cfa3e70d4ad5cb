package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/store"
	"github.com/roach88/elementq/internal/testutil"
)

func TestRun_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, driver := range []string{store.DriverMattn, store.DriverModernc} {
		h := New(WithDriver(driver), WithLogger(testutil.DiscardLogger()))
		for _, file := range files {
			t.Run(driver+"/"+filepath.Base(file), func(t *testing.T) {
				scenario, err := LoadScenario(file)
				require.NoError(t, err)

				result, err := h.Run(context.Background(), scenario)
				require.NoError(t, err)
				assert.True(t, result.Pass, "errors: %v", result.Errors)
			})
		}
	}
}

func TestRun_ReportsMismatch(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/trips_subfolders.yaml")
	require.NoError(t, err)
	scenario.Expect.IDs = []int64{2}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: ids")
	assert.Contains(t, result.Errors[0], "Actual: [2 3]")
	assert.Contains(t, result.Errors[0], "folderId = 2")
}

func TestRun_ClassifiesErrors(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/bad_order.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Error(t, result.Err)
	assert.Equal(t, ErrInvalidValue, result.ErrorKind)
	assert.Contains(t, result.Err.Error(), "shoeSize")
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:     "typo",
		Criteria: map[string]any{"kindd": "image"},
		Expect:   Expect{Count: int64p(3)},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, ErrUnknownCriterion, result.ErrorKind)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: no error")
}

func TestRun_ScenariosAreIsolated(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/widest_first.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.IDs, second.IDs)
	assert.Equal(t, int64(5), second.Count)
}

func TestRun_FixtureFailure(t *testing.T) {
	scenario := &Scenario{
		Name:    "broken",
		Fixture: filepath.Join(t.TempDir(), "missing.yaml"),
		Expect:  Expect{Count: int64p(0)},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load fixture")
}
