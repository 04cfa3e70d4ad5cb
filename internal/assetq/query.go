package assetq

import (
	"context"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/elementq"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/records"
)

// AssetQuery builds and runs queries over assets.
//
// Setters return the query for chaining. The first invalid setting is kept
// and returned by Err and by every execution method:
//
//	assets, err := q.Kind("image", "video").Width(criteria.Gte(100)).All(ctx)
//
// An AssetQuery is not safe for concurrent use.
type AssetQuery struct {
	q *elementq.Query[ir.Asset]
}

// New creates an asset query that executes against backend.
func New(backend elementq.Backend, c Collaborators, opts ...elementq.Option) (*AssetQuery, error) {
	q, err := elementq.New[ir.Asset](extension{c: c}, backend, opts...)
	if err != nil {
		return nil, err
	}
	return &AssetQuery{q: q}, nil
}

// Query returns the generic element query behind q.
func (a *AssetQuery) Query() *elementq.Query[ir.Asset] {
	return a.q
}

// Set sets any asset or element criterion by name.
//
// volume and volumeId address the same column, so setting one clears the
// other and the last one set wins. volume also accepts volume records,
// which are stored as their ids under volumeId.
func (a *AssetQuery) Set(name string, value any) error {
	def, _, ok := a.q.Registry().Canonical(name)
	if !ok {
		return a.q.Set(name, value)
	}

	target := def.Name
	if target == CriterionVolume {
		if ids, isRecord := volumeRecordIDs(value); isRecord {
			target, value = CriterionVolumeID, ids
		}
	}
	if target != def.Name {
		name = target
	}
	if err := a.q.Set(name, value); err != nil || value == nil {
		return err
	}

	switch target {
	case CriterionVolume:
		a.q.Unset(CriterionVolumeID)
	case CriterionVolumeID:
		a.q.Unset(CriterionVolume)
	}
	return nil
}

// volumeRecordIDs returns the ids of value when it holds volume records.
func volumeRecordIDs(value any) ([]int64, bool) {
	switch v := value.(type) {
	case ir.Volume:
		return []int64{v.ID}, true
	case *ir.Volume:
		if v == nil {
			return nil, false
		}
		return []int64{v.ID}, true
	case records.Volume:
		return []int64{v.ID}, true
	case *records.Volume:
		if v == nil {
			return nil, false
		}
		return []int64{v.ID}, true
	case []records.Volume:
		ids := make([]int64, len(v))
		for i, vol := range v {
			ids[i] = vol.ID
		}
		return ids, true
	case []ir.Volume:
		ids := make([]int64, len(v))
		for i, vol := range v {
			ids[i] = vol.ID
		}
		return ids, true
	}
	return nil, false
}

// Err returns the first error recorded by a chained setter.
func (a *AssetQuery) Err() error {
	return a.q.Err()
}

// Criteria returns a snapshot of the criteria set so far.
func (a *AssetQuery) Criteria() criteria.Snapshot {
	return a.q.Criteria()
}

func (a *AssetQuery) with(name string, value any) *AssetQuery {
	a.q.Record(a.Set(name, value))
	return a
}

// ID restricts the query to the given element ids.
func (a *AssetQuery) ID(ids ...int64) *AssetQuery {
	return a.with(elementq.CriterionID, ids)
}

// UID restricts the query to the given element UIDs.
func (a *AssetQuery) UID(uids ...string) *AssetQuery {
	return a.with(elementq.CriterionUID, uids)
}

// Status restricts the query to elements with any of the given statuses.
func (a *AssetQuery) Status(statuses ...string) *AssetQuery {
	return a.with(elementq.CriterionStatus, statuses)
}

// Archived filters on the archived flag.
func (a *AssetQuery) Archived(archived bool) *AssetQuery {
	return a.with(elementq.CriterionArchived, archived)
}

// DateCreated filters on the creation date. value may be a time.Time, a
// date param string such as ">= 2024-01-01" or a criteria.Value.
func (a *AssetQuery) DateCreated(value any) *AssetQuery {
	return a.with(elementq.CriterionDateCreated, value)
}

// DateUpdated filters on the last update date.
func (a *AssetQuery) DateUpdated(value any) *AssetQuery {
	return a.with(elementq.CriterionDateUpdated, value)
}

// FixedOrder orders results by their position in the id criterion.
func (a *AssetQuery) FixedOrder(fixed bool) *AssetQuery {
	return a.with(elementq.CriterionFixedOrder, fixed)
}

// OrderBy sets the order, e.g. "filename desc, id".
func (a *AssetQuery) OrderBy(order string) *AssetQuery {
	return a.with(elementq.CriterionOrderBy, order)
}

// Limit caps the number of results.
func (a *AssetQuery) Limit(n int64) *AssetQuery {
	return a.with(elementq.CriterionLimit, n)
}

// Offset skips the first n results.
func (a *AssetQuery) Offset(n int64) *AssetQuery {
	return a.with(elementq.CriterionOffset, n)
}

// Volume restricts the query to volumes with the given handles.
func (a *AssetQuery) Volume(handles ...string) *AssetQuery {
	return a.with(CriterionVolume, handles)
}

// Source is the deprecated name of Volume.
//
// Deprecated: use Volume.
func (a *AssetQuery) Source(handles ...string) *AssetQuery {
	return a.with(CriterionSource, handles)
}

// VolumeID restricts the query to the given volume ids.
func (a *AssetQuery) VolumeID(ids ...int64) *AssetQuery {
	return a.with(CriterionVolumeID, ids)
}

// SourceID is the deprecated name of VolumeID.
//
// Deprecated: use VolumeID.
func (a *AssetQuery) SourceID(ids ...int64) *AssetQuery {
	return a.with(CriterionSourceID, ids)
}

// FolderID restricts the query to the given folders.
func (a *AssetQuery) FolderID(ids ...int64) *AssetQuery {
	return a.with(CriterionFolderID, ids)
}

// IncludeSubfolders extends FolderID to every descendant folder, as the
// folder tree stands when the query runs.
func (a *AssetQuery) IncludeSubfolders(include bool) *AssetQuery {
	return a.with(CriterionIncludeSubfolders, include)
}

// Filename filters on the filename. "*" matches any run of characters.
func (a *AssetQuery) Filename(pattern string) *AssetQuery {
	return a.with(CriterionFilename, pattern)
}

// Kind restricts the query to the given file kinds. Calling Kind with no
// arguments matches nothing.
func (a *AssetQuery) Kind(kinds ...string) *AssetQuery {
	return a.with(CriterionKind, kinds)
}

// Width filters on pixel width. value may be an integer, a param string
// such as "and, >= 100, < 500" or a criteria.Value.
func (a *AssetQuery) Width(value any) *AssetQuery {
	return a.with(CriterionWidth, value)
}

// Height filters on pixel height.
func (a *AssetQuery) Height(value any) *AssetQuery {
	return a.with(CriterionHeight, value)
}

// Size filters on file size in bytes.
func (a *AssetQuery) Size(value any) *AssetQuery {
	return a.with(CriterionSize, value)
}

// DateModified filters on the file modification date.
func (a *AssetQuery) DateModified(value any) *AssetQuery {
	return a.with(CriterionDateModified, value)
}

// WithTransforms eager-loads the named transforms for every result.
func (a *AssetQuery) WithTransforms(handles ...string) *AssetQuery {
	return a.with(CriterionWithTransforms, handles)
}

// All returns every matching asset.
func (a *AssetQuery) All(ctx context.Context) ([]*ir.Asset, error) {
	return a.q.All(ctx)
}

// One returns the first matching asset, or nil.
func (a *AssetQuery) One(ctx context.Context) (*ir.Asset, error) {
	return a.q.One(ctx)
}

// Nth returns the asset at position n, or nil.
func (a *AssetQuery) Nth(ctx context.Context, n int) (*ir.Asset, error) {
	return a.q.Nth(ctx, n)
}

// IDs returns the ids of every matching asset.
func (a *AssetQuery) IDs(ctx context.Context) ([]int64, error) {
	return a.q.IDs(ctx)
}

// Count returns the number of matching assets.
func (a *AssetQuery) Count(ctx context.Context) (int64, error) {
	return a.q.Count(ctx)
}

// Rows returns matching rows without hydration or eager loading.
func (a *AssetQuery) Rows(ctx context.Context) ([]map[string]any, error) {
	return a.q.Rows(ctx)
}

// Explain describes the query without executing it.
func (a *AssetQuery) Explain(ctx context.Context) (*elementq.Explanation, error) {
	return a.q.Explain(ctx)
}
