package savedquery_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/assetq"
	"github.com/roach88/elementq/internal/elementq"
	"github.com/roach88/elementq/internal/savedquery"
	"github.com/roach88/elementq/internal/store"
	"github.com/roach88/elementq/internal/testutil"
)

type recordingSetter struct {
	names  []string
	values map[string]any
	reject string
}

func (r *recordingSetter) Set(name string, value any) error {
	if name == r.reject {
		return assert.AnError
	}
	r.names = append(r.names, name)
	if r.values == nil {
		r.values = map[string]any{}
	}
	r.values[name] = value
	return nil
}

func TestLoad_FormatsAgree(t *testing.T) {
	yamlLib, err := savedquery.Load(filepath.Join("testdata", "queries.yaml"))
	require.NoError(t, err)
	cueLib, err := savedquery.Load(filepath.Join("testdata", "queries.cue"))
	require.NoError(t, err)

	assert.Equal(t, []string{"large-images", "nothing", "trips"}, yamlLib.Names())
	assert.Equal(t, yamlLib, cueLib)

	q, err := cueLib.Get("large-images")
	require.NoError(t, err)
	assert.Equal(t, "Images at least 100px wide", q.Description)
	assert.Equal(t, map[string]any{"kind": "image", "width": ">= 100", "orderBy": "width desc, filename"}, q.Criteria)

	trips, err := cueLib.Get("trips")
	require.NoError(t, err)
	assert.Equal(t, 2, trips.Criteria["folderId"])
	assert.Equal(t, true, trips.Criteria["includeSubfolders"])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
		return p
	}

	_, err := savedquery.Load(write("q.json", "{}"))
	assert.ErrorContains(t, err, `unsupported extension ".json"`)

	_, err = savedquery.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = savedquery.Load(write("bad.yaml", "queries:\n  a:\n    filter: {kind: image}\n"))
	assert.ErrorContains(t, err, "field filter not found")

	_, err = savedquery.Load(write("bad.cue", "queries: a: criteria: kind: {nested: true}\n"))
	var le *savedquery.LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "kind")

	_, err = savedquery.Load(write("syntax.cue", "queries: {\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	lib, err := savedquery.ParseYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lib)

	lib, err = savedquery.ParseCUE("empty.cue", nil)
	require.NoError(t, err)
	assert.Empty(t, lib)
}

func TestLibrary_GetUnknown(t *testing.T) {
	lib := savedquery.Library{"a": {Name: "a"}, "b": {Name: "b"}}
	_, err := lib.Get("c")
	assert.EqualError(t, err, `no saved query "c" (have: a, b)`)
}

func TestApply_SortedAndFailFast(t *testing.T) {
	q := savedquery.Query{Name: "q", Criteria: map[string]any{"width": 1, "kind": "image", "filename": "*.jpg"}}

	rec := &recordingSetter{}
	require.NoError(t, q.Apply(rec))
	assert.Equal(t, []string{"filename", "kind", "width"}, rec.names)

	rec = &recordingSetter{reject: "kind"}
	err := q.Apply(rec)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, `saved query "q"`)
	assert.Equal(t, []string{"filename"}, rec.names)
}

func TestApply_AssetQuery(t *testing.T) {
	ctx := context.Background()
	s := testutil.SeededStore(t, store.DriverMattn)
	lib, err := savedquery.Load(filepath.Join("testdata", "queries.cue"))
	require.NoError(t, err)

	run := func(name string) []int64 {
		t.Helper()
		q, err := assetq.New(s, assetq.Collaborators{Volumes: s.Volumes(), Folders: s.Folders(), Transforms: s},
			elementq.WithLogger(testutil.DiscardLogger()))
		require.NoError(t, err)

		saved, err := lib.Get(name)
		require.NoError(t, err)
		require.NoError(t, saved.Apply(q))

		ids, err := q.IDs(ctx)
		require.NoError(t, err)
		return ids
	}

	assert.Equal(t, []int64{3, 2, 1}, run("large-images"))
	assert.Equal(t, []int64{2, 3}, run("trips"))
	assert.Empty(t, run("nothing"))
}

func TestApply_UnknownCriterion(t *testing.T) {
	s := testutil.SeededStore(t, store.DriverMattn)
	q, err := assetq.New(s, assetq.Collaborators{}, elementq.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)

	saved := savedquery.Query{Name: "typo", Criteria: map[string]any{"knd": "image"}}
	err = saved.Apply(q)
	assert.True(t, elementq.IsUnknownCriterion(err))
}
