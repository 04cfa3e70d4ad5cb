package assetq_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/assetq"
	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/elementq"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/queryir"
	"github.com/roach88/elementq/internal/records"
	"github.com/roach88/elementq/internal/store"
	"github.com/roach88/elementq/internal/testutil"
)

// countingBackend counts the statements that reach the store.
type countingBackend struct {
	*store.Store
	queries int
}

func (b *countingBackend) QueryRows(ctx context.Context, q queryir.Select) (elementq.Rows, error) {
	b.queries++
	return b.Store.QueryRows(ctx, q)
}

func (b *countingBackend) Count(ctx context.Context, q queryir.Select) (int64, error) {
	b.queries++
	return b.Store.Count(ctx, q)
}

func collaborators(s *store.Store) assetq.Collaborators {
	return assetq.Collaborators{Volumes: s.Volumes(), Folders: s.Folders(), Transforms: s}
}

func newQuery(t *testing.T, s *store.Store, opts ...elementq.Option) (*assetq.AssetQuery, *countingBackend) {
	t.Helper()
	backend := &countingBackend{Store: s}
	opts = append([]elementq.Option{elementq.WithLogger(testutil.DiscardLogger())}, opts...)
	q, err := assetq.New(backend, collaborators(s), opts...)
	require.NoError(t, err)
	return q, backend
}

func ids(assets []*ir.Asset) []int64 {
	out := make([]int64, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}
	return out
}

func TestAssetQuery_KindAndWidthScenario(t *testing.T) {
	for _, driver := range []string{store.DriverMattn, store.DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			q, _ := newQuery(t, testutil.SeededStore(t, driver))

			q.Kind("image", "video").Width(criteria.Gte(100))
			require.NoError(t, q.Err())

			ex, err := q.Explain(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{
				`kind: assets.kind IN ("image", "video")`,
				`width: assets.width >= 100`,
			}, ex.Conditions)

			assets, err := q.All(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 2, 3}, ids(assets))
			for _, a := range assets {
				assert.Equal(t, "image", a.Kind)
				assert.Equal(t, int64(200), *a.Width)
			}
		})
	}
}

func TestAssetQuery_ExplainGolden(t *testing.T) {
	q, _ := newQuery(t, testutil.OpenStore(t, store.DriverMattn))
	q.Kind("image", "video").Width(">= 100")

	ex, err := q.Explain(context.Background())
	require.NoError(t, err)

	params, err := json.Marshal(ex.Params)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "kind_width", []byte(ex.SQL+"\n"+string(params)+"\n"))
}

func TestAssetQuery_FolderExpansion(t *testing.T) {
	ctx := context.Background()
	s := testutil.OpenStore(t, store.DriverMattn)

	vol := &ir.Volume{Name: "Photos", Handle: "photos", Type: "local"}
	require.NoError(t, s.CreateVolume(ctx, vol))
	a := &ir.Folder{VolumeID: &vol.ID, Name: "A"}
	require.NoError(t, s.CreateFolder(ctx, a))
	b := &ir.Folder{VolumeID: &vol.ID, ParentID: &a.ID, Name: "B", Path: "b/"}
	require.NoError(t, s.CreateFolder(ctx, b))
	c := &ir.Folder{VolumeID: &vol.ID, ParentID: &a.ID, Name: "C", Path: "c/"}
	require.NoError(t, s.CreateFolder(ctx, c))
	other := &ir.Folder{VolumeID: &vol.ID, Name: "Other"}
	require.NoError(t, s.CreateFolder(ctx, other))

	folderFilter := func(q *assetq.AssetQuery) queryir.Predicate {
		ex, err := q.Explain(ctx)
		require.NoError(t, err)
		for _, f := range ex.Filters {
			if f.Criterion == assetq.CriterionFolderID {
				return f.Predicate
			}
		}
		t.Fatal("no folder filter")
		return nil
	}

	q, _ := newQuery(t, s)
	q.FolderID(a.ID).IncludeSubfolders(true)
	assert.Equal(t, queryir.In{
		Field:  "assets.folderId",
		Values: []ir.IRValue{ir.IRInt(a.ID), ir.IRInt(b.ID), ir.IRInt(c.ID)},
	}, folderFilter(q))

	q.IncludeSubfolders(false)
	assert.Equal(t, queryir.In{
		Field:  "assets.folderId",
		Values: []ir.IRValue{ir.IRInt(a.ID)},
	}, folderFilter(q))
}

func TestAssetQuery_SubfoldersResolvedAtExecution(t *testing.T) {
	ctx := context.Background()
	s := testutil.SeededStore(t, store.DriverMattn)
	q, _ := newQuery(t, s)
	q.FolderID(3).IncludeSubfolders(true)

	before, err := q.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(before))

	kittens := &ir.Folder{ParentID: ir64(3), VolumeID: ir64(1), Name: "Kittens", Path: "pets/kittens/"}
	require.NoError(t, s.CreateFolder(ctx, kittens))
	require.NoError(t, s.CreateAsset(ctx, &ir.Asset{
		Element:  ir.Element{Enabled: true},
		VolumeID: 1,
		FolderID: kittens.ID,
		Filename: "kitten.jpg",
		Kind:     "image",
	}))

	after, err := q.All(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 2, "the same query sees the new subfolder")
}

func TestAssetQuery_Subfolders(t *testing.T) {
	ctx := context.Background()
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverMattn))

	q.FolderID(2)
	direct, err := q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, direct)

	q.IncludeSubfolders(true)
	tree, err := q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, tree)
}

func TestAssetQuery_UnknownVolumeHandle(t *testing.T) {
	ctx := context.Background()
	q, backend := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.Volume("nope")

	assets, err := q.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, assets)

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	ex, err := q.Explain(ctx)
	require.NoError(t, err)
	assert.True(t, ex.ShortCircuit)
	assert.Empty(t, ex.SQL)
	assert.Zero(t, backend.queries)
}

func TestAssetQuery_MissingFolderIsEmpty(t *testing.T) {
	q, backend := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.FolderID(99).IncludeSubfolders(true)

	assets, err := q.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, assets)
	assert.Zero(t, backend.queries)
}

func TestAssetQuery_EmptyListSkipsStorage(t *testing.T) {
	ctx := context.Background()
	q, backend := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.Kind()

	assets, err := q.All(ctx)
	require.NoError(t, err)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
	assert.Zero(t, backend.queries)
}

func TestAssetQuery_ZeroValueMatchesNothing(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{assetq.CriterionVolume, assetq.CriterionKind} {
		t.Run(name, func(t *testing.T) {
			q, backend := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
			require.NoError(t, q.Set(name, criteria.Value{}))

			assets, err := q.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, assets)
			assert.Zero(t, backend.queries)
		})
	}
}

func TestAssetQuery_VolumeAndDeprecatedSource(t *testing.T) {
	ctx := context.Background()
	s := testutil.SeededStore(t, store.DriverMattn)

	var notices []string
	deprecator := criteria.DeprecatorFunc(func(alias, canonical string) {
		notices = append(notices, alias+"->"+canonical)
	})

	canonical, _ := newQuery(t, s)
	canonical.Volume("photos")
	aliased, _ := newQuery(t, s, elementq.WithDeprecator(deprecator))
	aliased.Source("photos")

	a, err := canonical.Explain(ctx)
	require.NoError(t, err)
	b, err := aliased.Explain(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.Filters, b.Filters)
	assert.Equal(t, a.SQL, b.SQL)
	assert.Equal(t, []string{"source->volume"}, notices)

	got, err := aliased.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, got)

	byID, _ := newQuery(t, s, elementq.WithDeprecator(deprecator))
	byID.SourceID(2)
	got, err = byID.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, got)
	assert.Equal(t, []string{"source->volume", "sourceId->volumeId"}, notices)
}

func TestAssetQuery_VolumeReplacesVolumeID(t *testing.T) {
	ctx := context.Background()
	s := testutil.SeededStore(t, store.DriverMattn)

	q, _ := newQuery(t, s)
	q.VolumeID(2).Volume("photos")
	require.NoError(t, q.Err())
	assert.False(t, q.Query().Has(assetq.CriterionVolumeID))
	got, err := q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, got)

	q.VolumeID(2)
	assert.False(t, q.Query().Has(assetq.CriterionVolume))
	got, err = q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, got)

	require.NoError(t, q.Set(assetq.CriterionVolume, nil))
	assert.True(t, q.Query().Has(assetq.CriterionVolumeID), "unsetting volume keeps volumeId")
}

func TestAssetQuery_VolumeRecord(t *testing.T) {
	ctx := context.Background()
	s := testutil.SeededStore(t, store.DriverMattn)

	docs, err := s.VolumeByHandle(ctx, "docs")
	require.NoError(t, err)

	for name, value := range map[string]any{
		"ir":      docs,
		"pointer": &docs,
		"record":  records.Volume{Volume: docs},
		"records": []records.Volume{{Volume: docs}},
	} {
		t.Run(name, func(t *testing.T) {
			q, _ := newQuery(t, s)
			require.NoError(t, q.Set(assetq.CriterionVolume, value))
			assert.False(t, q.Query().Has(assetq.CriterionVolume))

			got, err := q.IDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{5}, got)
		})
	}
}

func TestAssetQuery_Filename(t *testing.T) {
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.Filename("g*.jpg")

	got, err := q.IDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, got)
}

func TestAssetQuery_DateCreated(t *testing.T) {
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverModernc))
	q.DateCreated("between 2024-02-01 and 2024-03-01")

	got, err := q.IDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, got)

	q.DateCreated("2024-03-01")
	got, err = q.IDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, got, "a bare date covers the whole day")
}

func TestAssetQuery_OrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.OrderBy("width desc, filename")

	got, err := q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 2, 1, 4}, got)

	second, err := q.Nth(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "geyser.jpg", second.Filename)
	assert.Equal(t, "trips/iceland/", second.FolderPath)

	q.Offset(1).Limit(2)
	got, err = q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, got)

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestAssetQuery_FixedOrder(t *testing.T) {
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.ID(4, 1, 3).FixedOrder(true)

	got, err := q.IDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1, 3}, got)
}

func TestAssetQuery_WithTransforms(t *testing.T) {
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.VolumeID(1).Kind("image").WithTransforms("thumb", "hero")

	assets, err := q.All(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.Equal(t, "sunrise_thumb.jpg", assets[0].Transforms["thumb"].Filename)
	assert.NotContains(t, assets[0].Transforms, "hero")
	assert.Len(t, assets[1].Transforms, 2)
	assert.Empty(t, assets[2].Transforms)
}

func TestAssetQuery_TransformFailureKeepsResults(t *testing.T) {
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.ID(1).WithTransforms("thumb", "banner")

	assets, err := q.All(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "sunrise.jpg", assets[0].Filename)
}

func TestAssetQuery_Rows(t *testing.T) {
	q, _ := newQuery(t, testutil.SeededStore(t, store.DriverMattn))
	q.ID(5).WithTransforms("thumb")

	rows, err := q.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "report.pdf", rows[0]["filename"])
	assert.Equal(t, int64(300), rows[0]["width"])
	assert.Nil(t, rows[0]["height"])
	assert.NotContains(t, rows[0], "transforms")
}

func TestAssetQuery_Status(t *testing.T) {
	ctx := context.Background()
	s := testutil.SeededStore(t, store.DriverMattn)
	_, err := s.DB().Exec(`UPDATE elements SET enabled = 0 WHERE id = 2`)
	require.NoError(t, err)
	_, err = s.DB().Exec(`UPDATE elements SET archived = 1 WHERE id = 3`)
	require.NoError(t, err)

	q, _ := newQuery(t, s)

	got, err := q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got, "no status filter by default")

	q.Status("enabled")
	got, err = q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 5}, got)

	q.Status("disabled", "archived")
	got, err = q.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, got)
}

func TestAssetQuery_Errors(t *testing.T) {
	ctx := context.Background()
	s := testutil.SeededStore(t, store.DriverMattn)

	q, _ := newQuery(t, s)
	assert.True(t, elementq.IsUnknownCriterion(q.Set("colour", "red")))

	q.Width("and, > 500, < 100")
	_, err := q.All(ctx)
	assert.True(t, elementq.IsInvalidCriterionValue(err))

	bare, err := assetq.New(s, assetq.Collaborators{}, elementq.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	bare.Volume("photos")
	_, err = bare.All(ctx)
	assert.True(t, elementq.IsExecutionFailure(err))

	s.Close()
	closed, _ := newQuery(t, s)
	_, err = closed.All(ctx)
	assert.True(t, elementq.IsExecutionFailure(err))
}

func ir64(n int64) *int64 { return &n }
