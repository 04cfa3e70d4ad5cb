package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/testutil"
)

// scenarioDir writes the shared fixture and the given scenarios to a new
// directory.
func scenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets.fixture"), []byte(testutil.AssetFixture), 0644))
	for name, body := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

const imagesScenario = `
name: images
description: "Images only"
fixture: assets.fixture
criteria:
  kind: image
expect:
  ids: [1, 2, 3]
`

const wrongScenario = `
name: wrong
description: "Expects the wrong count"
fixture: assets.fixture
criteria:
  kind: video
expect:
  count: 2
`

func TestCheck_AllPass(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"images.yaml": imagesScenario})

	out, err := execute(t, "check", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ images\n\n1 passed, 0 failed, 1 total\n", out)
}

func TestCheck_Failure(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"images.yaml": imagesScenario,
		"wrong.yaml":  wrongScenario,
	})

	out, err := execute(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ images\n")
	assert.Contains(t, out, "✗ wrong\n")
	assert.Contains(t, out, "  Assertion failed: count\n")
	assert.Contains(t, out, "  Actual: 1\n")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestCheck_Filter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"images.yaml": imagesScenario,
		"wrong.yaml":  wrongScenario,
	})

	out, err := execute(t, "check", dir, "--filter", "img*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	out, err = execute(t, "check", dir, "--filter", "imag*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestCheck_LoadErrorCountsAsFailure(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: broken\n"})

	out, err := execute(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml\n")
	assert.Contains(t, out, "failed to load scenario")
}

func TestCheck_JSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"images.yaml": imagesScenario})

	out, err := execute(t, "--format", "json", "check", dir)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, []int64{1, 2, 3}, resp.Data.Scenarios[0].IDs)
}

func TestCheck_MissingDir(t *testing.T) {
	_, err := execute(t, "check", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
