package assetq

import (
	"context"
	"errors"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/predicate"
	"github.com/roach88/elementq/internal/queryir"
)

// Asset criteria.
const (
	CriterionVolume            = "volume"
	CriterionSource            = "source"
	CriterionVolumeID          = "volumeId"
	CriterionSourceID          = "sourceId"
	CriterionFolderID          = "folderId"
	CriterionIncludeSubfolders = "includeSubfolders"
	CriterionFilename          = "filename"
	CriterionKind              = "kind"
	CriterionWidth             = "width"
	CriterionHeight            = "height"
	CriterionSize              = "size"
	CriterionDateModified      = "dateModified"
	CriterionWithTransforms    = "withTransforms"
)

// TransformPrefetcher attaches transform indexes to a batch of assets.
type TransformPrefetcher interface {
	PrefetchTransforms(ctx context.Context, assets []*ir.Asset, handles []string) error
}

// Collaborators are the lookups an asset query needs at execution time.
// A nil collaborator is only an error when a criterion needs it.
type Collaborators struct {
	Volumes    predicate.HandleResolver
	Folders    predicate.HierarchyResolver
	Transforms TransformPrefetcher
}

var (
	errNoVolumes    = errors.New("no volume resolver configured")
	errNoFolders    = errors.New("no folder resolver configured")
	errNoTransforms = errors.New("no transform prefetcher configured")
)

// extension implements elementq.Extension[ir.Asset].
type extension struct {
	c Collaborators
}

func (extension) ElementType() string { return ir.ElementTypeAsset }

func (extension) Joins() []queryir.Join {
	return []queryir.Join{
		{
			Kind:  queryir.InnerJoin,
			Table: queryir.Table{Name: "assets"},
			Field: "assets.id",
			Other: "elements.id",
		},
		{
			Kind:  queryir.InnerJoin,
			Table: queryir.Table{Name: "volumefolders", Alias: "volumeFolders"},
			Field: "volumeFolders.id",
			Other: "assets.folderId",
		},
	}
}

func (extension) Columns() []queryir.Column {
	return []queryir.Column{
		{Expr: "assets.volumeId", As: "volumeId"},
		{Expr: "assets.folderId", As: "folderId"},
		{Expr: "assets.filename", As: "filename"},
		{Expr: "assets.kind", As: "kind"},
		{Expr: "assets.width", As: "width"},
		{Expr: "assets.height", As: "height"},
		{Expr: "assets.size", As: "size"},
		{Expr: "assets.dateModified", As: "dateModified"},
		{Expr: "volumeFolders.path", As: "folderPath"},
	}
}

func (extension) Criteria() []criteria.Definition {
	return []criteria.Definition{
		{Name: CriterionVolume, Kind: criteria.KindHandle},
		{Name: CriterionSource, AliasOf: CriterionVolume},
		{Name: CriterionVolumeID, Kind: criteria.KindIDList, Column: "assets.volumeId"},
		{Name: CriterionSourceID, AliasOf: CriterionVolumeID},
		{Name: CriterionFolderID, Kind: criteria.KindContainer, Column: "assets.folderId"},
		{Name: CriterionIncludeSubfolders, Kind: criteria.KindBool},
		{Name: CriterionFilename, Kind: criteria.KindString, Column: "assets.filename"},
		{Name: CriterionKind, Kind: criteria.KindString, Column: "assets.kind"},
		{Name: CriterionWidth, Kind: criteria.KindNumber, Column: "assets.width"},
		{Name: CriterionHeight, Kind: criteria.KindNumber, Column: "assets.height"},
		{Name: CriterionSize, Kind: criteria.KindNumber, Column: "assets.size"},
		{Name: CriterionDateModified, Kind: criteria.KindDate, Column: "assets.dateModified"},
		{Name: CriterionWithTransforms, Kind: criteria.KindTransforms},
	}
}

// Resolve turns volume handles into volume ids and expands folders into
// their subtrees when includeSubfolders is set.
func (e extension) Resolve(ctx context.Context, snap criteria.Snapshot) ([]predicate.Filter, error) {
	var filters []predicate.Filter

	if v, ok := snap.Get(CriterionVolume); ok {
		if e.c.Volumes == nil {
			return nil, errNoVolumes
		}
		def, _ := snap.Definition(CriterionVolume)
		pred, err := predicate.ResolveHandles(ctx, e.c.Volumes, def, "assets.volumeId", v)
		if err != nil {
			return nil, err
		}
		filters = append(filters, predicate.Filter{Criterion: CriterionVolume, Predicate: pred})
	}

	if v, ok := snap.Get(CriterionFolderID); ok {
		subfolders := snap.Bool(CriterionIncludeSubfolders)
		if subfolders && e.c.Folders == nil {
			return nil, errNoFolders
		}
		def, _ := snap.Definition(CriterionFolderID)
		pred, err := predicate.ExpandContainers(ctx, e.c.Folders, def, v, subfolders)
		if err != nil {
			return nil, err
		}
		if pred != nil {
			filters = append(filters, predicate.Filter{Criterion: CriterionFolderID, Predicate: pred})
		}
	}

	return filters, nil
}

// Populate prefetches the requested transforms for the whole batch in one
// call.
func (e extension) Populate(ctx context.Context, snap criteria.Snapshot, assets []*ir.Asset) error {
	v, ok := snap.Get(CriterionWithTransforms)
	if !ok {
		return nil
	}
	handles, _ := predicate.Names(v)
	if len(handles) == 0 {
		return nil
	}
	if e.c.Transforms == nil {
		return errNoTransforms
	}
	return e.c.Transforms.PrefetchTransforms(ctx, assets, handles)
}
